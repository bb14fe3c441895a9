package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'new',
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lead_groups (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS delivery_events (
	id          TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	kind        TEXT NOT NULL,
	occurred_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_user ON leads(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_lead_groups_user ON lead_groups(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_campaigns_user ON campaigns(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_delivery_events_campaign ON delivery_events(campaign_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Leads

func (s *SQLiteStore) ListLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	docs, err := s.listDocs(ctx, tableLeads, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Lead](docs, "lead")
}

func (s *SQLiteStore) GetLead(ctx context.Context, userID, id string) (*model.Lead, error) {
	doc, err := s.getDoc(ctx, tableLeads, "lead", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Lead](doc, "lead")
}

func (s *SQLiteStore) UpsertLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if err := upsertLeadExec(ctx, s.db, lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *SQLiteStore) UpsertLeads(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, l := range leads {
		if err := upsertLeadExec(ctx, tx, l); err != nil {
			return err
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit leads")
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, userID, id string) error {
	return s.deleteDoc(ctx, tableLeads, "lead", userID, id)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertLeadExec(ctx context.Context, db execer, l model.Lead) error {
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO leads (id, user_id, status, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data, updated_at = excluded.updated_at
		 WHERE leads.user_id = excluded.user_id`,
		l.ID, l.UserID, string(l.Status), string(data), ts(l.CreatedAt), ts(l.UpdatedAt),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert lead %s", l.ID)
	}
	return checkRowsAffected(res, "lead", l.ID)
}

// Groups

func (s *SQLiteStore) ListGroups(ctx context.Context, userID string) ([]model.LeadGroup, error) {
	docs, err := s.listDocs(ctx, tableGroups, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.LeadGroup](docs, "group")
}

func (s *SQLiteStore) GetGroup(ctx context.Context, userID, id string) (*model.LeadGroup, error) {
	doc, err := s.getDoc(ctx, tableGroups, "group", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.LeadGroup](doc, "group")
}

func (s *SQLiteStore) UpsertGroup(ctx context.Context, g model.LeadGroup) error {
	return s.upsertDoc(ctx, tableGroups, "group", g.ID, g.UserID, g, g.CreatedAt, g.UpdatedAt)
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, userID, id string) error {
	return s.deleteDoc(ctx, tableGroups, "group", userID, id)
}

// Campaigns

func (s *SQLiteStore) ListCampaigns(ctx context.Context, userID string) ([]model.Campaign, error) {
	docs, err := s.listDocs(ctx, tableCampaigns, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Campaign](docs, "campaign")
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error) {
	doc, err := s.getDoc(ctx, tableCampaigns, "campaign", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Campaign](doc, "campaign")
}

func (s *SQLiteStore) UpsertCampaign(ctx context.Context, c model.Campaign) error {
	return s.upsertDoc(ctx, tableCampaigns, "campaign", c.ID, c.UserID, c, c.CreatedAt, c.UpdatedAt)
}

func (s *SQLiteStore) ApplyEvent(ctx context.Context, userID string, ev model.DeliveryEvent, now time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	// The insert comes first so the transaction holds the write lock before
	// it reads the campaign.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO delivery_events (id, campaign_id, kind, occurred_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		ev.ID, ev.CampaignID, string(ev.Kind), ts(ev.At),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: record event %s", ev.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return false, nil
	}

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM campaigns WHERE id = ? AND user_id = ?`, ev.CampaignID, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, &model.NotFoundError{Entity: "campaign", ID: ev.CampaignID}
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: get campaign %s", ev.CampaignID)
	}
	c, ok, err := applyToCampaign([]byte(data), ev.Kind, now)
	if err != nil || !ok {
		return false, err
	}
	body, err := json.Marshal(c)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal campaign")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE campaigns SET data = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(body), ts(c.UpdatedAt), c.ID, userID,
	); err != nil {
		return false, eris.Wrapf(err, "sqlite: update campaign %s", c.ID)
	}
	if err := tx.Commit(); err != nil {
		return false, eris.Wrap(err, "sqlite: commit event")
	}
	return true, nil
}

// document helpers

func (s *SQLiteStore) listDocs(ctx context.Context, table, userID string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE user_id = ? ORDER BY created_at, id`, table),
		userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", table)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", table)
		}
		docs = append(docs, []byte(data))
	}
	return docs, eris.Wrapf(rows.Err(), "sqlite: list %s iterate", table)
}

func (s *SQLiteStore) getDoc(ctx context.Context, table, entity, userID, id string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = ? AND user_id = ?`, table),
		id, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s %s", entity, id)
	}
	return []byte(data), nil
}

func (s *SQLiteStore) upsertDoc(ctx context.Context, table, entity, id, userID string, doc any, created, updated time.Time) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", entity)
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %[1]s (id, user_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
		 WHERE %[1]s.user_id = excluded.user_id`, table),
		id, userID, string(data), ts(created), ts(updated),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert %s %s", entity, id)
	}
	return checkRowsAffected(res, entity, id)
}

func (s *SQLiteStore) deleteDoc(ctx context.Context, table, entity, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, table),
		id, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete %s %s", entity, id)
	}
	return checkRowsAffected(res, entity, id)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return &model.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// applyToCampaign bumps the counter for kind on a stored campaign document.
func applyToCampaign(doc []byte, kind model.EventKind, now time.Time) (*model.Campaign, bool, error) {
	c, err := decodeOne[model.Campaign](doc, "campaign")
	if err != nil {
		return nil, false, err
	}
	if !c.Stats.Apply(kind) {
		return c, false, nil
	}
	if now = now.UTC(); now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
	return c, true, nil
}

func decodeOne[T any](doc []byte, entity string) (*T, error) {
	var v T
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal %s", entity)
	}
	return &v, nil
}

func decodeAll[T any](docs [][]byte, entity string) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decodeOne[T](d, entity)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadforge-cli/internal/db"
	"github.com/sells-group/leadforge-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects a pool and wraps it in a PostgresStore.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. The caller keeps ownership of it.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'new',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lead_groups (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS delivery_events (
	id          TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	kind        TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_user ON leads(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_lead_groups_user ON lead_groups(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_campaigns_user ON campaigns(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_delivery_events_campaign ON delivery_events(campaign_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Leads

func (s *PostgresStore) ListLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	docs, err := s.listDocs(ctx, tableLeads, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Lead](docs, "lead")
}

func (s *PostgresStore) GetLead(ctx context.Context, userID, id string) (*model.Lead, error) {
	doc, err := s.getDoc(ctx, tableLeads, "lead", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Lead](doc, "lead")
}

func (s *PostgresStore) UpsertLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if err := upsertLeadPg(ctx, s.pool, lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (s *PostgresStore) UpsertLeads(ctx context.Context, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, l := range leads {
			if err := upsertLeadPg(ctx, tx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) DeleteLead(ctx context.Context, userID, id string) error {
	return s.deleteDoc(ctx, tableLeads, "lead", userID, id)
}

// pgExecer is satisfied by both db.Pool and pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertLeadPg(ctx context.Context, ex pgExecer, l model.Lead) error {
	data, err := json.Marshal(l)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}
	tag, err := ex.Exec(ctx,
		`INSERT INTO leads (id, user_id, status, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 WHERE leads.user_id = EXCLUDED.user_id`,
		l.ID, l.UserID, string(l.Status), data, l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert lead %s", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Entity: "lead", ID: l.ID}
	}
	return nil
}

// Groups

func (s *PostgresStore) ListGroups(ctx context.Context, userID string) ([]model.LeadGroup, error) {
	docs, err := s.listDocs(ctx, tableGroups, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.LeadGroup](docs, "group")
}

func (s *PostgresStore) GetGroup(ctx context.Context, userID, id string) (*model.LeadGroup, error) {
	doc, err := s.getDoc(ctx, tableGroups, "group", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.LeadGroup](doc, "group")
}

func (s *PostgresStore) UpsertGroup(ctx context.Context, g model.LeadGroup) error {
	return s.upsertDoc(ctx, tableGroups, "group", g.ID, g.UserID, g, g.CreatedAt, g.UpdatedAt)
}

func (s *PostgresStore) DeleteGroup(ctx context.Context, userID, id string) error {
	return s.deleteDoc(ctx, tableGroups, "group", userID, id)
}

// Campaigns

func (s *PostgresStore) ListCampaigns(ctx context.Context, userID string) ([]model.Campaign, error) {
	docs, err := s.listDocs(ctx, tableCampaigns, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Campaign](docs, "campaign")
}

func (s *PostgresStore) GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error) {
	doc, err := s.getDoc(ctx, tableCampaigns, "campaign", userID, id)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Campaign](doc, "campaign")
}

func (s *PostgresStore) UpsertCampaign(ctx context.Context, c model.Campaign) error {
	return s.upsertDoc(ctx, tableCampaigns, "campaign", c.ID, c.UserID, c, c.CreatedAt, c.UpdatedAt)
}

func (s *PostgresStore) ApplyEvent(ctx context.Context, userID string, ev model.DeliveryEvent, now time.Time) (bool, error) {
	applied := false
	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO delivery_events (id, campaign_id, kind, occurred_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			ev.ID, ev.CampaignID, string(ev.Kind), ev.At.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: record event %s", ev.ID)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		var data []byte
		err = tx.QueryRow(ctx,
			`SELECT data FROM campaigns WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			ev.CampaignID, userID,
		).Scan(&data)
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.NotFoundError{Entity: "campaign", ID: ev.CampaignID}
		}
		if err != nil {
			return eris.Wrapf(err, "postgres: get campaign %s", ev.CampaignID)
		}
		c, ok, err := applyToCampaign(data, ev.Kind, now)
		if err != nil || !ok {
			return err
		}
		body, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal campaign")
		}
		if _, err := tx.Exec(ctx,
			`UPDATE campaigns SET data = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
			body, c.UpdatedAt.UTC(), c.ID, userID,
		); err != nil {
			return eris.Wrapf(err, "postgres: update campaign %s", c.ID)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// document helpers

func (s *PostgresStore) listDocs(ctx context.Context, table, userID string) ([][]byte, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE user_id = $1 ORDER BY created_at, id`, table),
		userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s", table)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", table)
		}
		docs = append(docs, data)
	}
	return docs, eris.Wrapf(rows.Err(), "postgres: list %s iterate", table)
}

func (s *PostgresStore) getDoc(ctx context.Context, table, entity, userID, id string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT data FROM %s WHERE id = $1 AND user_id = $2`, table),
		id, userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get %s %s", entity, id)
	}
	return data, nil
}

func (s *PostgresStore) upsertDoc(ctx context.Context, table, entity, id, userID string, doc any, created, updated time.Time) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal %s", entity)
	}
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %[1]s (id, user_id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 WHERE %[1]s.user_id = EXCLUDED.user_id`, table),
		id, userID, data, created.UTC(), updated.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert %s %s", entity, id)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

func (s *PostgresStore) deleteDoc(ctx context.Context, table, entity, userID, id string) error {
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, table),
		id, userID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete %s %s", entity, id)
	}
	if tag.RowsAffected() == 0 {
		return &model.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

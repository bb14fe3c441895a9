package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLead_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM leads WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing", "u1").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetLead(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, err := json.Marshal(testLead("l1", "u1", 0))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT data FROM leads`).
		WithArgs("l1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

	got, err := s.GetLead(context.Background(), "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	a, _ := json.Marshal(testLead("a", "u1", 0))
	b, _ := json.Marshal(testLead("b", "u1", 0))
	mock.ExpectQuery(`SELECT data FROM leads WHERE user_id = \$1 ORDER BY created_at, id`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(a).AddRow(b))

	leads, err := s.ListLeads(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "b", leads[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertLead_ForeignOwner(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("l1", "u2", "new", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	_, err := s.UpsertLead(context.Background(), testLead("l1", "u2", 0))
	assert.True(t, model.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertLeads_Transaction(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("a", "u1", "new", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("b", "u1", "new", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.UpsertLeads(context.Background(), []model.Lead{testLead("a", "u1", 0), testLead("b", "u1", 0)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertLeads_RollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("a", "u1", "new", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.UpsertLeads(context.Background(), []model.Lead{testLead("a", "u1", 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert lead a")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteGroup_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM lead_groups WHERE id = \$1 AND user_id = \$2`).
		WithArgs("g1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteGroup(context.Background(), "u1", "g1")
	assert.True(t, model.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertCampaign(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO campaigns`).
		WithArgs("c1", "u1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertCampaign(context.Background(), model.Campaign{ID: "c1", UserID: "u1", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyEvent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	doc, err := json.Marshal(model.Campaign{ID: "c1", UserID: "u1", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)
	ev := model.DeliveryEvent{ID: "evt-1", CampaignID: "c1", Kind: model.EventReplied, At: base}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO delivery_events .* ON CONFLICT \(id\) DO NOTHING`).
		WithArgs("evt-1", "c1", "replied", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT data FROM campaigns WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs("c1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(doc))
	mock.ExpectExec(`UPDATE campaigns SET data`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "c1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO delivery_events`).
		WithArgs("evt-1", "c1", "replied", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	first, err := s.ApplyEvent(context.Background(), "u1", ev, base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.ApplyEvent(context.Background(), "u1", ev, base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyEvent_UpdateFailureRollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	doc, err := json.Marshal(model.Campaign{ID: "c1", UserID: "u1"})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO delivery_events`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT data FROM campaigns`).
		WithArgs("c1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(doc))
	mock.ExpectExec(`UPDATE campaigns SET data`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = s.ApplyEvent(context.Background(), "u1", model.DeliveryEvent{ID: "evt-1", CampaignID: "c1", Kind: model.EventOpened, At: base}, base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update campaign c1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ApplyEvent_ForeignCampaign(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO delivery_events`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT data FROM campaigns`).
		WithArgs("c1", "u2").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := s.ApplyEvent(context.Background(), "u2", model.DeliveryEvent{ID: "evt-1", CampaignID: "c1", Kind: model.EventOpened, At: base}, base)
	assert.True(t, model.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

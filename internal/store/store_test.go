package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testLead(id, user string, offset time.Duration) model.Lead {
	vd := base.Add(-24 * time.Hour)
	return model.Lead{
		ID:               id,
		UserID:           user,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            "ada@acme.io",
		Company:          "Acme",
		Budget:           &model.Budget{Min: 1000, Max: 5000},
		Tags:             []string{"vip"},
		Status:           model.StatusNew,
		Source:           model.SourceAIGenerated,
		Evidence:         model.Evidence{ProjectSource: "rfp", URLs: []string{"https://acme.io"}},
		VerificationDate: &vd,
		ProvenanceAt:     base.Add(offset),
		CreatedAt:        base.Add(offset),
		UpdatedAt:        base.Add(offset),
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("UpsertAndGetLead", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := testLead("l1", "u1", 0)
		_, err := s.UpsertLead(ctx, in)
		require.NoError(t, err)

		got, err := s.GetLead(ctx, "u1", "l1")
		require.NoError(t, err)
		assert.Equal(t, in.Company, got.Company)
		assert.Equal(t, in.Budget, got.Budget)
		assert.Equal(t, in.Evidence, got.Evidence)
		assert.True(t, in.VerificationDate.Equal(*got.VerificationDate))
		assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		in := testLead("l1", "u1", 0)
		_, err := s.UpsertLead(ctx, in)
		require.NoError(t, err)

		in.Status = model.StatusContacted
		in.Notes = "called twice"
		_, err = s.UpsertLead(ctx, in)
		require.NoError(t, err)

		got, err := s.GetLead(ctx, "u1", "l1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusContacted, got.Status)
		assert.Equal(t, "called twice", got.Notes)
	})

	t.Run("ForeignOwnerIsNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpsertLead(ctx, testLead("l1", "u1", 0))
		require.NoError(t, err)

		_, err = s.GetLead(ctx, "u2", "l1")
		assert.True(t, model.IsNotFound(err), "got %v", err)

		_, err = s.UpsertLead(ctx, testLead("l1", "u2", 0))
		assert.True(t, model.IsNotFound(err), "cross-user overwrite must be refused, got %v", err)

		err = s.DeleteLead(ctx, "u2", "l1")
		assert.True(t, model.IsNotFound(err))

		got, err := s.GetLead(ctx, "u1", "l1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("ListLeadsScopedAndOrdered", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.UpsertLeads(ctx, []model.Lead{
			testLead("b", "u1", time.Hour),
			testLead("a", "u1", 0),
			testLead("c", "u2", 0),
		}))

		leads, err := s.ListLeads(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "a", leads[0].ID)
		assert.Equal(t, "b", leads[1].ID)

		none, err := s.ListLeads(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpsertLeadsEmpty", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.UpsertLeads(context.Background(), nil))
	})

	t.Run("DeleteLead", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.UpsertLead(ctx, testLead("l1", "u1", 0))
		require.NoError(t, err)
		require.NoError(t, s.DeleteLead(ctx, "u1", "l1"))

		_, err = s.GetLead(ctx, "u1", "l1")
		assert.True(t, model.IsNotFound(err))

		err = s.DeleteLead(ctx, "u1", "l1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Groups", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		g := model.LeadGroup{ID: "g1", UserID: "u1", Name: "Hot", LeadIDs: []string{"l1"}, CreatedAt: base, UpdatedAt: base}
		require.NoError(t, s.UpsertGroup(ctx, g))

		g.LeadIDs = append(g.LeadIDs, "l2")
		require.NoError(t, s.UpsertGroup(ctx, g))

		got, err := s.GetGroup(ctx, "u1", "g1")
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2"}, got.LeadIDs)

		list, err := s.ListGroups(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, s.DeleteGroup(ctx, "u1", "g1"))
		_, err = s.GetGroup(ctx, "u1", "g1")
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("Campaigns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		c := model.Campaign{ID: "c1", UserID: "u1", Name: "Spring", Subject: "Hi", Template: "Hello {{lead.first_name}}",
			Status: model.CampaignDraft, CreatedAt: base, UpdatedAt: base}
		require.NoError(t, s.UpsertCampaign(ctx, c))

		c.Stats.Sent = 3
		c.Status = model.CampaignActive
		require.NoError(t, s.UpsertCampaign(ctx, c))

		got, err := s.GetCampaign(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.Stats.Sent)
		assert.Equal(t, model.CampaignActive, got.Status)

		list, err := s.ListCampaigns(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		_, err = s.GetCampaign(ctx, "u2", "c1")
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("ApplyEventOnce", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.UpsertCampaign(ctx, model.Campaign{ID: "c1", UserID: "u1", CreatedAt: base, UpdatedAt: base}))

		ev := model.DeliveryEvent{ID: "evt-1", CampaignID: "c1", Kind: model.EventOpened, At: base}
		first, err := s.ApplyEvent(ctx, "u1", ev, base.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, first)

		again, err := s.ApplyEvent(ctx, "u1", ev, base.Add(2*time.Minute))
		require.NoError(t, err)
		assert.False(t, again)

		got, err := s.GetCampaign(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Stats.Opened)
		assert.Equal(t, base.Add(time.Minute), got.UpdatedAt)
	})

	t.Run("ApplyEventForeignCampaignRollsBack", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.UpsertCampaign(ctx, model.Campaign{ID: "c1", UserID: "u1", CreatedAt: base, UpdatedAt: base}))

		ev := model.DeliveryEvent{ID: "evt-1", CampaignID: "c1", Kind: model.EventSent, At: base}
		_, err := s.ApplyEvent(ctx, "u2", ev, base)
		assert.True(t, model.IsNotFound(err))

		// The rejected event id was not kept.
		ok, err := s.ApplyEvent(ctx, "u1", ev, base)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}

package leads

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/reconcile"
)

func resultWith(leads ...model.Lead) reconcile.Result {
	return reconcile.Result{Created: leads}
}

func TestGroups(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateManual(ctx, "u1", draft("Ada", "Lovelace", "ada@acme.io", "Acme"))
	require.NoError(t, err)
	b, err := svc.CreateManual(ctx, "u1", draft("Grace", "Hopper", "grace@navy.mil", "Navy"))
	require.NoError(t, err)
	foreign, err := svc.CreateManual(ctx, "u2", draft("Alan", "Turing", "alan@bletchley.uk", "GCHQ"))
	require.NoError(t, err)

	_, err = svc.CreateGroup(ctx, "u1", "  ")
	require.Error(t, err)

	g, err := svc.CreateGroup(ctx, "u1", "Hot prospects")
	require.NoError(t, err)
	assert.Empty(t, g.LeadIDs)

	clk.tick()
	g, err = svc.AddToGroup(ctx, "u1", g.ID, a.ID)
	require.NoError(t, err)
	g, err = svc.AddToGroup(ctx, "u1", g.ID, b.ID)
	require.NoError(t, err)
	g, err = svc.AddToGroup(ctx, "u1", g.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, g.LeadIDs)
	assert.True(t, g.UpdatedAt.Equal(clk.t))

	_, err = svc.AddToGroup(ctx, "u1", g.ID, foreign.ID)
	assert.True(t, model.IsNotFound(err), "foreign leads cannot join")
	_, err = svc.AddToGroup(ctx, "u2", g.ID, foreign.ID)
	assert.True(t, model.IsNotFound(err), "foreign groups are invisible")

	require.NoError(t, svc.Delete(ctx, "u1", a.ID))
	members, err := svc.GroupLeads(ctx, "u1", g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1, "dangling ids are filtered")
	assert.Equal(t, b.ID, members[0].ID)

	g, err = svc.RemoveFromGroup(ctx, "u1", g.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, g.LeadIDs)

	list, err := svc.ListGroups(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteGroup(ctx, "u1", g.ID))
	err = svc.DeleteGroup(ctx, "u1", g.ID)
	assert.True(t, model.IsNotFound(err))
}

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/model"
)

func TestCollapse_FoldsRaceDuplicates(t *testing.T) {
	t.Parallel()

	survivor := storedLead("a")
	survivor.Notes = ""
	survivor.IsFavorite = false
	survivor.Tags = []string{"vip"}

	dup := storedLead("b")
	dup.CreatedAt = t1
	dup.UpdatedAt = t1
	dup.ProvenanceAt = t1
	dup.Industry = "Payments"
	dup.Notes = "met at conf"
	dup.IsFavorite = true
	dup.Tags = []string{"VIP", "warm"}

	other := storedLead("c")
	other.Company = "Globex"

	kept, dups := Collapse([]model.Lead{dup, other, survivor})
	require.Len(t, kept, 2)
	require.Len(t, dups, 1)
	assert.Equal(t, "b", dups[0].ID)

	assert.Equal(t, "c", kept[0].ID)
	got := kept[1]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, "Payments", got.Industry, "fresher duplicate content folds in")
	assert.Equal(t, "met at conf", got.Notes)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, []string{"vip", "warm"}, got.Tags)
	assert.Equal(t, t1, got.UpdatedAt)
}

func TestCollapse_KeepsExistingNotes(t *testing.T) {
	t.Parallel()

	a := storedLead("a")
	b := storedLead("b")
	b.CreatedAt = t1
	b.Notes = "other note"

	kept, dups := Collapse([]model.Lead{a, b})
	require.Len(t, kept, 1)
	assert.Len(t, dups, 1)
	assert.Equal(t, "called twice", kept[0].Notes)
}

func TestCollapse_IgnoresLostAndUnique(t *testing.T) {
	t.Parallel()

	a := storedLead("a")
	lost := storedLead("b")
	lost.Status = model.StatusLost

	in := []model.Lead{a, lost}
	kept, dups := Collapse(in)
	assert.Empty(t, dups)
	assert.Equal(t, in, kept)
}

func TestMerge_EqualFreshnessIsNoOp(t *testing.T) {
	t.Parallel()

	existing := storedLead("a")
	in := incomingLead("Acme", "Ada", "Lovelace", "ada@acme.io")
	in.NormalizedAt = existing.ProvenanceAt
	in.Industry = "Other"

	got, changed := Merge(existing, in, t2)
	assert.False(t, changed)
	assert.Equal(t, existing, got)
}

func TestMerge_IdenticalContentIsNoOp(t *testing.T) {
	t.Parallel()

	existing := storedLead("a")
	in := existing
	in.ProvenanceAt = t2

	got, changed := Merge(existing, in, t2)
	assert.False(t, changed)
	assert.Equal(t, t0, got.UpdatedAt)
}

func TestMerge_ZeroBudgetIgnored(t *testing.T) {
	t.Parallel()

	existing := storedLead("a")
	existing.Budget = &model.Budget{Min: 10, Max: 20}
	in := incomingLead("Acme", "Ada", "Lovelace", "ada@acme.io")
	in.NormalizedAt = t2
	in.Budget = &model.Budget{}

	got, changed := Merge(existing, in, t2)
	assert.False(t, changed)
	assert.Equal(t, &model.Budget{Min: 10, Max: 20}, got.Budget)
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())

	assert.True(t, StatusConverted.Terminal())
	assert.True(t, StatusLost.Terminal())
	assert.False(t, StatusProposal.Terminal())
}

func TestSourceValid(t *testing.T) {
	assert.True(t, SourceAIGenerated.Valid())
	assert.True(t, SourceManual.Valid())
	assert.True(t, SourceImported.Valid())
	assert.False(t, Source("scraped").Valid())
}

func TestBudget(t *testing.T) {
	assert.NoError(t, Budget{Min: 0, Max: 10}.Validate())
	assert.True(t, IsInvalidLead(Budget{Min: -1, Max: 10}.Validate()))
	assert.True(t, IsInvalidLead(Budget{Min: 1, Max: -10}.Validate()))

	assert.Equal(t, Budget{Min: 50, Max: 100}, Budget{Min: 100, Max: 50}.Normalized())
	assert.Equal(t, Budget{Min: 50, Max: 100}, Budget{Min: 50, Max: 100}.Normalized())
}

func TestEvidenceIsZero(t *testing.T) {
	assert.True(t, Evidence{}.IsZero())
	assert.False(t, Evidence{URLs: []string{"https://acme.io"}}.IsZero())
	assert.False(t, Evidence{JobPostings: "3 open roles"}.IsZero())
}

func TestLeadHelpers(t *testing.T) {
	l := Lead{FirstName: "Ada", Email: "Ada@Analytical.IO"}
	assert.Equal(t, "Ada", l.FullName())
	l.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", l.FullName())
	assert.Equal(t, "analytical.io", l.EmailDomain())

	assert.Equal(t, "", Lead{Email: "nobody"}.EmailDomain())
	assert.Equal(t, "", Lead{Email: "trailing@"}.EmailDomain())

	assert.True(t, Lead{Status: StatusNew}.Active())
	assert.True(t, Lead{Status: StatusConverted}.Active())
	assert.False(t, Lead{Status: StatusLost}.Active())
}

func TestFreshness(t *testing.T) {
	verified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	written := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	normalized := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	l := Lead{NormalizedAt: normalized}
	assert.Equal(t, normalized, l.Freshness())

	l.ProvenanceAt = written
	assert.Equal(t, written, l.Freshness())

	l.VerificationDate = &verified
	assert.Equal(t, verified, l.Freshness(), "verification date wins even when older")
}

func TestTouchNeverMovesBackwards(t *testing.T) {
	later := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	l := Lead{UpdatedAt: later}

	l.Touch(later.Add(-time.Hour))
	assert.Equal(t, later, l.UpdatedAt)

	l.Touch(later.Add(time.Hour))
	assert.Equal(t, later.Add(time.Hour), l.UpdatedAt)
}

func TestCloneIsDeep(t *testing.T) {
	v := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := Lead{
		Tags:             []string{"a"},
		Budget:           &Budget{Min: 1, Max: 2},
		Evidence:         Evidence{URLs: []string{"u1"}},
		VerificationDate: &v,
	}
	c := l.Clone()
	c.Tags[0] = "b"
	c.Budget.Max = 99
	c.Evidence.URLs[0] = "u2"
	*c.VerificationDate = v.Add(time.Hour)

	assert.Equal(t, "a", l.Tags[0])
	assert.Equal(t, int64(2), l.Budget.Max)
	assert.Equal(t, "u1", l.Evidence.URLs[0])
	assert.Equal(t, v, *l.VerificationDate)

	require.Nil(t, Lead{}.Clone().Tags)
}

func TestDedupeTags(t *testing.T) {
	assert.Equal(t, []string{"Hot", "fintech"}, DedupeTags([]string{" Hot ", "hot", "", "fintech", "FINTECH"}))
	assert.Equal(t, []string{}, DedupeTags(nil))
}

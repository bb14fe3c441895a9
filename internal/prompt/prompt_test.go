package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadforge-cli/internal/model"
)

func TestBuild_FreeTextTakesPrecedence(t *testing.T) {
	t.Parallel()

	prefs := &model.Preferences{Industries: []string{"Healthcare"}}
	got := Build("fintech startups needing API integration", prefs)

	assert.Contains(t, got, "fintech startups needing API integration")
	assert.NotContains(t, got, "Healthcare")
	assert.Contains(t, got, `"leads"`)
}

func TestBuild_AlwaysCarriesResultContract(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "saas companies"} {
		got := Build(in, nil)
		for _, field := range []string{`"firstName"`, `"lastName"`, `"company"`, `"email"`, `"budget"`, `"verificationDate"`} {
			assert.Contains(t, got, field, "input %q", in)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	prefs := &model.Preferences{
		Industries:   []string{"Retail", "Logistics"},
		ProjectTypes: []string{"mobile apps"},
		BudgetRange:  &model.Budget{Min: 1000, Max: 5000},
	}
	assert.Equal(t, Build("", prefs), Build("", prefs))
}

func TestFromPreferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		prefs *model.Preferences
		want  string
	}{
		{
			name:  "nil preferences",
			prefs: nil,
			want:  "Find potential clients who might need freelance services.",
		},
		{
			name: "all fields",
			prefs: &model.Preferences{
				Industries:   []string{"Retail", "Logistics"},
				ProjectTypes: []string{"mobile apps", "dashboards"},
				BudgetRange:  &model.Budget{Min: 1000, Max: 5000},
			},
			want: "Find potential clients in Retail, Logistics looking for mobile apps, dashboards with budget between $1000 and $5000 who might need freelance services.",
		},
		{
			name:  "industries only",
			prefs: &model.Preferences{Industries: []string{"Fintech"}},
			want:  "Find potential clients in Fintech who might need freelance services.",
		},
		{
			name:  "project types and blank industries",
			prefs: &model.Preferences{Industries: []string{" ", ""}, ProjectTypes: []string{"SEO"}},
			want:  "Find potential clients looking for SEO who might need freelance services.",
		},
		{
			name:  "inverted budget is shown corrected",
			prefs: &model.Preferences{BudgetRange: &model.Budget{Min: 9000, Max: 2000}},
			want:  "Find potential clients with budget between $2000 and $9000 who might need freelance services.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FromPreferences(tt.prefs)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "undefined")
			assert.False(t, strings.Contains(got, "  "), "no double spaces: %q", got)
		})
	}
}

func TestBuild_BlankFreeTextUsesPreferences(t *testing.T) {
	t.Parallel()

	got := Build("   ", &model.Preferences{Industries: []string{"Fintech"}})
	assert.True(t, strings.HasPrefix(got, "Find potential clients in Fintech"))
}

func TestSystem(t *testing.T) {
	t.Parallel()
	assert.Contains(t, System(), "lead researcher")
}

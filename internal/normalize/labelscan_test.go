package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLabels(t *testing.T) {
	t.Parallel()

	labels := []string{"Alpha", "Beta", "Gamma"}

	tests := []struct {
		name string
		text string
		want map[string]string
	}{
		{
			name: "all present",
			text: "Alpha: one  Beta: two\n\tthree Gamma: four",
			want: map[string]string{"Alpha": "one", "Beta": "two three", "Gamma": "four"},
		},
		{
			name: "middle label missing",
			text: "Alpha: one Gamma: four",
			want: map[string]string{"Alpha": "one", "Beta": "", "Gamma": "four"},
		},
		{
			name: "no labels",
			text: "free text only",
			want: map[string]string{"Alpha": "", "Beta": "", "Gamma": ""},
		},
		{
			name: "out of order label is not found",
			text: "Beta: two Alpha: one",
			want: map[string]string{"Alpha": "one", "Beta": "", "Gamma": ""},
		},
		{
			name: "label glued to a word is ignored",
			text: "Alpha: xBeta: still alpha Beta: two",
			want: map[string]string{"Alpha": "xBeta: still alpha", "Beta": "two", "Gamma": ""},
		},
		{
			name: "placeholder values are empty",
			text: "Alpha: undefined Beta: null Gamma: ok",
			want: map[string]string{"Alpha": "", "Beta": "", "Gamma": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ScanLabels(tt.text, labels))
		})
	}
}

func TestParseEvidenceBlob(t *testing.T) {
	t.Parallel()

	got := ParseEvidenceBlob("Evidence: RFP posted Company News: new office Job Postings: 3 engineers Last Verified: 2024-02-02 LinkedIn: li/acme Website: acme.io")
	assert.Equal(t, LegacyEvidence{
		ProjectSource: "RFP posted",
		CompanyNews:   "new office",
		JobPostings:   "3 engineers",
		LastVerified:  "2024-02-02",
		LinkedIn:      "li/acme",
		Website:       "acme.io",
	}, got)

	assert.True(t, ParseEvidenceBlob("called twice").IsZero())
}

func TestHasEvidenceLabels(t *testing.T) {
	t.Parallel()

	assert.True(t, HasEvidenceLabels("Company News: x"))
	assert.False(t, HasEvidenceLabels("met at a conference"))
}

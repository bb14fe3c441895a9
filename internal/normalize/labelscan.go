package normalize

import (
	"strings"
	"unicode"
)

// Legacy evidence labels, in the order older prompt versions emitted them.
const (
	LabelEvidence     = "Evidence"
	LabelCompanyNews  = "Company News"
	LabelJobPostings  = "Job Postings"
	LabelLastVerified = "Last Verified"
	LabelLinkedIn     = "LinkedIn"
	LabelWebsite      = "Website"
)

// EvidenceLabels is the label order of the legacy notes blob.
var EvidenceLabels = []string{
	LabelEvidence,
	LabelCompanyNews,
	LabelJobPostings,
	LabelLastVerified,
	LabelLinkedIn,
	LabelWebsite,
}

// LegacyEvidence is the parsed form of a labelled evidence blob.
type LegacyEvidence struct {
	ProjectSource string
	CompanyNews   string
	JobPostings   string
	LastVerified  string
	LinkedIn      string
	Website       string
}

// IsZero reports whether the blob contained none of the labels.
func (e LegacyEvidence) IsZero() bool {
	return e == LegacyEvidence{}
}

// ParseEvidenceBlob segments an "Evidence: ... Company News: ... Last Verified: ..."
// blob into its fields. Missing labels yield empty strings.
func ParseEvidenceBlob(text string) LegacyEvidence {
	v := ScanLabels(text, EvidenceLabels)
	return LegacyEvidence{
		ProjectSource: v[LabelEvidence],
		CompanyNews:   v[LabelCompanyNews],
		JobPostings:   v[LabelJobPostings],
		LastVerified:  v[LabelLastVerified],
		LinkedIn:      v[LabelLinkedIn],
		Website:       v[LabelWebsite],
	}
}

// HasEvidenceLabels reports whether text looks like a legacy evidence blob.
func HasEvidenceLabels(text string) bool {
	for _, l := range []string{LabelEvidence, LabelCompanyNews, LabelLastVerified} {
		if indexLabel(text, l+":", 0) >= 0 {
			return true
		}
	}
	return false
}

// ScanLabels locates each "Label:" token of labels in order and returns the
// text between consecutive found tokens, whitespace-collapsed. A label that is
// absent (or that only appears before an earlier label) maps to "". Placeholder
// values such as "undefined" left by template interpolation are treated as empty.
func ScanLabels(text string, labels []string) map[string]string {
	out := make(map[string]string, len(labels))
	for _, l := range labels {
		out[l] = ""
	}

	type hit struct {
		label      string
		start, end int // token start, value start
	}
	var hits []hit
	pos := 0
	for _, l := range labels {
		token := l + ":"
		idx := indexLabel(text, token, pos)
		if idx < 0 {
			continue
		}
		hits = append(hits, hit{label: l, start: idx, end: idx + len(token)})
		pos = idx + len(token)
	}

	for i, h := range hits {
		stop := len(text)
		if i+1 < len(hits) {
			stop = hits[i+1].start
		}
		out[h.label] = cleanValue(text[h.end:stop])
	}
	return out
}

// indexLabel finds token at or after from, requiring it to start the text or
// follow whitespace so "LinkedIn:" does not match inside "xLinkedIn:".
func indexLabel(text, token string, from int) int {
	for from <= len(text) {
		rel := strings.Index(text[from:], token)
		if rel < 0 {
			return -1
		}
		idx := from + rel
		if idx == 0 || unicode.IsSpace(rune(text[idx-1])) {
			return idx
		}
		from = idx + 1
	}
	return -1
}

func cleanValue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	switch strings.ToLower(s) {
	case "undefined", "null", "n/a", "none":
		return ""
	}
	return s
}

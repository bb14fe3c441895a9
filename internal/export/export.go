// Package export pushes qualified leads to external CRMs.
package export

import (
	"strings"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Result counts the outcome of an export run.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	// Errors holds one message per failed lead.
	Errors []string `json:"errors,omitempty"`
}

// Exportable reports whether a lead has progressed far enough to hand to a
// CRM.
func Exportable(l model.Lead) bool {
	switch l.Status {
	case model.StatusQualified, model.StatusProposal, model.StatusConverted:
		return true
	default:
		return false
	}
}

// eligible returns exportable leads with a unique email, counting the rest
// as skipped.
func eligible(leads []model.Lead, res *Result) []model.Lead {
	seen := make(map[string]bool, len(leads))
	out := make([]model.Lead, 0, len(leads))
	for _, l := range leads {
		email := strings.ToLower(strings.TrimSpace(l.Email))
		if !Exportable(l) || email == "" || seen[email] {
			res.Skipped++
			continue
		}
		seen[email] = true
		out = append(out, l)
	}
	return out
}

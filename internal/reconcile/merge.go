package reconcile

import (
	"slices"
	"time"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Merge folds a re-discovered record into an existing lead.
//
// User-owned fields (notes, tags, favorite, status, follow-up and contact
// dates) are never touched. Content fields are overwritten by non-empty
// incoming values only when the incoming freshness is strictly newer than the
// existing one. ID, UserID and CreatedAt never change. The bool reports
// whether any field changed; only then are UpdatedAt and ProvenanceAt bumped.
func Merge(existing, incoming model.Lead, now time.Time) (model.Lead, bool) {
	out := existing.Clone()
	if !incoming.Freshness().After(existing.Freshness()) {
		return out, false
	}

	changed := false
	setStr := func(dst *string, src string) {
		if src != "" && *dst != src {
			*dst = src
			changed = true
		}
	}

	setStr(&out.Title, incoming.Title)
	setStr(&out.Email, incoming.Email)
	setStr(&out.Phone, incoming.Phone)
	setStr(&out.Website, incoming.Website)
	setStr(&out.Industry, incoming.Industry)
	setStr(&out.CompanySize, incoming.CompanySize)
	setStr(&out.ProjectType, incoming.ProjectType)
	setStr(&out.Timeline, incoming.Timeline)
	setStr(&out.Requirements, incoming.Requirements)
	setStr(&out.LinkedIn, incoming.LinkedIn)

	setStr(&out.Evidence.ProjectSource, incoming.Evidence.ProjectSource)
	setStr(&out.Evidence.CompanyNews, incoming.Evidence.CompanyNews)
	setStr(&out.Evidence.JobPostings, incoming.Evidence.JobPostings)
	setStr(&out.Evidence.LinkedInCompany, incoming.Evidence.LinkedInCompany)
	if len(incoming.Evidence.URLs) > 0 && !slices.Equal(out.Evidence.URLs, incoming.Evidence.URLs) {
		out.Evidence.URLs = append([]string(nil), incoming.Evidence.URLs...)
		changed = true
	}

	if b := incoming.Budget; b != nil && (b.Min != 0 || b.Max != 0) {
		nb := b.Normalized()
		if out.Budget == nil || *out.Budget != nb {
			out.Budget = &nb
			changed = true
		}
	}
	if v := incoming.VerificationDate; v != nil && !v.IsZero() {
		if out.VerificationDate == nil || !out.VerificationDate.Equal(*v) {
			t := v.UTC()
			out.VerificationDate = &t
			changed = true
		}
	}

	if !changed {
		return existing.Clone(), false
	}
	out.Touch(now)
	if now = now.UTC(); now.After(out.ProvenanceAt) {
		out.ProvenanceAt = now
	}
	return out, true
}

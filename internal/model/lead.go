package model

import (
	"strings"
	"time"
)

// Status is the position of a lead in the sales lifecycle.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusProposal  Status = "proposal"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusProposal,
	StatusConverted,
	StatusLost,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusConverted || s == StatusLost
}

// Source records how a lead entered the system.
type Source string

const (
	SourceAIGenerated Source = "ai-generated"
	SourceManual      Source = "manual"
	SourceImported    Source = "imported"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceAIGenerated, SourceManual, SourceImported:
		return true
	default:
		return false
	}
}

// Budget is a project budget range in whole currency units.
type Budget struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Validate rejects negative bounds.
func (b Budget) Validate() error {
	if b.Min < 0 || b.Max < 0 {
		return &InvalidLeadError{Index: -1, Reason: "budget values must be non-negative"}
	}
	return nil
}

// Normalized returns the budget with an inverted range corrected by swapping.
func (b Budget) Normalized() Budget {
	if b.Min > b.Max {
		return Budget{Min: b.Max, Max: b.Min}
	}
	return b
}

// Evidence holds the research trail behind an AI-generated lead.
type Evidence struct {
	ProjectSource   string   `json:"project_source,omitempty"`
	CompanyNews     string   `json:"company_news,omitempty"`
	JobPostings     string   `json:"job_postings,omitempty"`
	LinkedInCompany string   `json:"linkedin_company,omitempty"`
	URLs            []string `json:"urls,omitempty"`
}

// IsZero reports whether no evidence was recorded.
func (e Evidence) IsZero() bool {
	return e.ProjectSource == "" && e.CompanyNews == "" && e.JobPostings == "" &&
		e.LinkedInCompany == "" && len(e.URLs) == 0
}

// Lead is a prospective client owned by one user.
type Lead struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// Contact
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`

	// Company and project
	Company      string  `json:"company,omitempty"`
	Website      string  `json:"website,omitempty"`
	CompanySize  string  `json:"company_size,omitempty"`
	Industry     string  `json:"industry,omitempty"`
	ProjectType  string  `json:"project_type,omitempty"`
	Budget       *Budget `json:"budget,omitempty"`
	Timeline     string  `json:"timeline,omitempty"`
	Requirements string  `json:"requirements,omitempty"`

	// User-owned
	Notes            string     `json:"notes,omitempty"`
	Tags             []string   `json:"tags"`
	IsFavorite       bool       `json:"is_favorite"`
	Status           Status     `json:"status"`
	LastContactedAt  *time.Time `json:"last_contacted_at,omitempty"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`

	// Verification
	Source           Source     `json:"source"`
	Evidence         Evidence   `json:"evidence"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
	// ProvenanceAt is when the content fields were last written.
	ProvenanceAt time.Time `json:"provenance_at"`
	// NormalizedAt is set on records fresh out of the normalizer and is not persisted.
	NormalizedAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the contact's first and last name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Active reports whether the lead takes part in deduplication.
func (l Lead) Active() bool {
	return l.Status != StatusLost
}

// EmailDomain returns the lower-cased domain part of the contact email.
func (l Lead) EmailDomain() string {
	at := strings.LastIndex(l.Email, "@")
	if at < 0 || at == len(l.Email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(l.Email[at+1:]))
}

// Freshness is the timestamp the freshness rule compares: the verification date
// when known, otherwise the provenance write time (or normalization time for
// records that were never persisted).
func (l Lead) Freshness() time.Time {
	if l.VerificationDate != nil && !l.VerificationDate.IsZero() {
		return *l.VerificationDate
	}
	if !l.ProvenanceAt.IsZero() {
		return l.ProvenanceAt
	}
	return l.NormalizedAt
}

// Touch bumps UpdatedAt to now without ever moving it backwards.
func (l *Lead) Touch(now time.Time) {
	now = now.UTC()
	if now.Before(l.UpdatedAt) {
		return
	}
	l.UpdatedAt = now
}

// Clone returns a deep copy so callers can mutate without aliasing slices or pointers.
func (l Lead) Clone() Lead {
	c := l
	if l.Tags != nil {
		c.Tags = append([]string(nil), l.Tags...)
	}
	if l.Evidence.URLs != nil {
		c.Evidence.URLs = append([]string(nil), l.Evidence.URLs...)
	}
	if l.Budget != nil {
		b := *l.Budget
		c.Budget = &b
	}
	c.VerificationDate = cloneTime(l.VerificationDate)
	c.LastContactedAt = cloneTime(l.LastContactedAt)
	c.NextFollowUpDate = cloneTime(l.NextFollowUpDate)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DedupeTags removes empty and case-insensitively repeated tags, keeping the
// first spelling seen.
func DedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Preferences are a user's stored prospecting preferences.
type Preferences struct {
	Industries   []string `json:"industries,omitempty" yaml:"industries"`
	ProjectTypes []string `json:"project_types,omitempty" yaml:"project_types"`
	BudgetRange  *Budget  `json:"budget_range,omitempty" yaml:"budget_range"`
}

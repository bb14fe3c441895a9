// Package reconcile merges freshly generated leads into a user's stored
// leads without losing user edits. Everything here is pure: callers persist
// the returned partition.
package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Result partitions the outcome of a reconciliation.
type Result struct {
	// Created are new leads to insert, in batch order.
	Created []model.Lead
	// Merged are existing leads with at least one changed field.
	Merged []model.Lead
	// Unchanged are existing leads that matched but needed no write.
	Unchanged []model.Lead
	// BatchDuplicates counts incoming records that folded into an earlier
	// record of the same batch without changing it.
	BatchDuplicates int
}

// Writes returns the leads that must be persisted.
func (r Result) Writes() []model.Lead {
	out := make([]model.Lead, 0, len(r.Created)+len(r.Merged))
	out = append(out, r.Created...)
	return append(out, r.Merged...)
}

type slot struct {
	lead    model.Lead
	created bool
	changed bool
}

// Reconcile matches every incoming record against the active existing leads
// by natural key. A match merges under the freshness rule; no match creates.
// Records of the same batch sharing a key fold into the first of them.
// existing is the snapshot taken immediately before the call; neither input
// slice is modified.
func Reconcile(existing, incoming []model.Lead, now time.Time) Result {
	now = now.UTC()

	index := make(map[string]*slot, len(existing))
	for _, l := range existing {
		if !l.Active() {
			continue
		}
		k := NaturalKey(l)
		// Duplicates left by an earlier race resolve to the oldest lead.
		if cur, ok := index[k]; ok && !older(l, cur.lead) {
			continue
		}
		index[k] = &slot{lead: l.Clone()}
	}

	var (
		res     Result
		order   []*slot
		touched = make(map[*slot]bool)
	)
	for _, in := range incoming {
		k := NaturalKey(in)
		s, ok := index[k]
		if !ok {
			s = &slot{lead: newLead(in, now), created: true}
			index[k] = s
			order = append(order, s)
			touched[s] = true
			continue
		}

		merged, changed := Merge(s.lead, in, now)
		if changed {
			s.lead = merged
			s.changed = true
		} else if s.created {
			res.BatchDuplicates++
		}
		if !touched[s] {
			touched[s] = true
			order = append(order, s)
		}
	}

	for _, s := range order {
		switch {
		case s.created:
			res.Created = append(res.Created, s.lead)
		case s.changed:
			res.Merged = append(res.Merged, s.lead)
		default:
			res.Unchanged = append(res.Unchanged, s.lead)
		}
	}
	return res
}

// newLead stamps persistence fields on a record that matched nothing. The id
// is always minted here: a source-supplied id ("1", a row number) may name an
// unrelated stored lead.
func newLead(in model.Lead, now time.Time) model.Lead {
	l := in.Clone()
	l.ID = uuid.NewString()
	if l.Status == "" {
		l.Status = model.StatusNew
	}
	if l.Source == "" {
		l.Source = model.SourceAIGenerated
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	l.ProvenanceAt = now
	l.NormalizedAt = time.Time{}
	return l
}

// older reports whether a was created before b, breaking ties by id.
func older(a, b model.Lead) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

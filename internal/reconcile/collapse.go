package reconcile

import (
	"time"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Collapse folds active leads that share a natural key into the oldest of
// them (CreatedAt, then ID). Content fields fold in by the freshness rule,
// tags are unioned, favorite is OR-ed and empty user fields are filled from
// the duplicates. Lost leads pass through untouched. kept preserves the
// input order of the survivors; dups are the absorbed leads.
func Collapse(leads []model.Lead) (kept []model.Lead, dups []model.Lead) {
	groups := make(map[string][]int)
	var keys []string
	for i, l := range leads {
		if !l.Active() {
			continue
		}
		k := NaturalKey(l)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}

	survivor := make(map[int]model.Lead)
	absorbed := make(map[int]bool)
	for _, k := range keys {
		idxs := groups[k]
		if len(idxs) == 1 {
			continue
		}
		best := idxs[0]
		for _, i := range idxs[1:] {
			if older(leads[i], leads[best]) {
				best = i
			}
		}
		stamp := latestUpdate(leads, idxs)
		s := leads[best].Clone()
		for _, i := range idxs {
			if i == best {
				continue
			}
			s = absorb(s, leads[i], stamp)
			absorbed[i] = true
		}
		survivor[best] = s
	}

	for i, l := range leads {
		switch {
		case absorbed[i]:
			dups = append(dups, l)
		case hasKey(survivor, i):
			kept = append(kept, survivor[i])
		default:
			kept = append(kept, l)
		}
	}
	return kept, dups
}

func absorb(into, dup model.Lead, stamp time.Time) model.Lead {
	out, _ := Merge(into, dup, stamp)

	changed := false
	tags := model.DedupeTags(append(append([]string(nil), out.Tags...), dup.Tags...))
	if len(tags) != len(out.Tags) {
		out.Tags = tags
		changed = true
	}
	if dup.IsFavorite && !out.IsFavorite {
		out.IsFavorite = true
		changed = true
	}
	if out.Notes == "" && dup.Notes != "" {
		out.Notes = dup.Notes
		changed = true
	}
	if out.NextFollowUpDate == nil && dup.NextFollowUpDate != nil {
		t := *dup.NextFollowUpDate
		out.NextFollowUpDate = &t
		changed = true
	}
	if out.LastContactedAt == nil && dup.LastContactedAt != nil {
		t := *dup.LastContactedAt
		out.LastContactedAt = &t
		changed = true
	}
	if changed {
		out.Touch(stamp)
	}
	return out
}

func latestUpdate(leads []model.Lead, idxs []int) time.Time {
	var t time.Time
	for _, i := range idxs {
		if leads[i].UpdatedAt.After(t) {
			t = leads[i].UpdatedAt
		}
	}
	return t
}

func hasKey(m map[int]model.Lead, k int) bool {
	_, ok := m[k]
	return ok
}

// Package lifecycle governs lead status transitions and the user-owned
// edits that are permitted regardless of status.
package lifecycle

import (
	"time"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// forward is the single permitted forward step from each status.
var forward = map[model.Status]model.Status{
	model.StatusNew:       model.StatusContacted,
	model.StatusContacted: model.StatusQualified,
	model.StatusQualified: model.StatusProposal,
	model.StatusProposal:  model.StatusConverted,
}

// AllowedTargets lists the statuses reachable from s in lifecycle order.
// Terminal statuses have none.
func AllowedTargets(s model.Status) []model.Status {
	if s.Terminal() || !s.Valid() {
		return nil
	}
	var out []model.Status
	if next, ok := forward[s]; ok {
		out = append(out, next)
	}
	return append(out, model.StatusLost)
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to model.Status) bool {
	for _, s := range AllowedTargets(from) {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves lead to target. On rejection it returns the lead
// unchanged with an *model.InvalidTransitionError. Entering contacted for
// the first time stamps LastContactedAt.
func Transition(lead model.Lead, target model.Status, now time.Time) (model.Lead, error) {
	if !CanTransition(lead.Status, target) {
		return lead, &model.InvalidTransitionError{From: lead.Status, To: target}
	}
	out := lead.Clone()
	out.Status = target
	now = now.UTC()
	if target == model.StatusContacted && out.LastContactedAt == nil {
		t := now
		out.LastContactedAt = &t
	}
	out.Touch(now)
	return out, nil
}

// ToggleFavorite flips IsFavorite.
func ToggleFavorite(lead model.Lead, now time.Time) model.Lead {
	out := lead.Clone()
	out.IsFavorite = !out.IsFavorite
	out.Touch(now)
	return out
}

// SetFavorite sets IsFavorite explicitly.
func SetFavorite(lead model.Lead, fav bool, now time.Time) model.Lead {
	out := lead.Clone()
	out.IsFavorite = fav
	out.Touch(now)
	return out
}

// SetNotes replaces the lead notes.
func SetNotes(lead model.Lead, notes string, now time.Time) model.Lead {
	out := lead.Clone()
	out.Notes = notes
	out.Touch(now)
	return out
}

// ScheduleFollowUp sets the next follow-up date; nil clears it.
func ScheduleFollowUp(lead model.Lead, at *time.Time, now time.Time) model.Lead {
	out := lead.Clone()
	if at == nil {
		out.NextFollowUpDate = nil
	} else {
		t := at.UTC()
		out.NextFollowUpDate = &t
	}
	out.Touch(now)
	return out
}

// SetTags replaces the tag list, deduplicated case-insensitively.
func SetTags(lead model.Lead, tags []string, now time.Time) model.Lead {
	out := lead.Clone()
	out.Tags = model.DedupeTags(tags)
	out.Touch(now)
	return out
}

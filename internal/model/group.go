package model

import "time"

// LeadGroup is a named set of lead ids owned by one user.
type LeadGroup struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	LeadIDs   []string  `json:"lead_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether leadID is a member of the group.
func (g LeadGroup) Contains(leadID string) bool {
	for _, id := range g.LeadIDs {
		if id == leadID {
			return true
		}
	}
	return false
}

// Add inserts leadID if absent and reports whether the group changed.
func (g *LeadGroup) Add(leadID string) bool {
	if g.Contains(leadID) {
		return false
	}
	g.LeadIDs = append(g.LeadIDs, leadID)
	return true
}

// Remove drops leadID and reports whether the group changed.
func (g *LeadGroup) Remove(leadID string) bool {
	for i, id := range g.LeadIDs {
		if id == leadID {
			g.LeadIDs = append(g.LeadIDs[:i:i], g.LeadIDs[i+1:]...)
			return true
		}
	}
	return false
}

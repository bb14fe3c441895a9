package leads

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// CreateGroup creates an empty named group.
func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*model.LeadGroup, error) {
	if err := requireUser(userID, "create group"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.InvalidInputError{Field: "group", Reason: "name is required"}
	}
	now := s.now().UTC()
	g := model.LeadGroup{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		LeadIDs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertGroup(ctx, g); err != nil {
		return nil, eris.Wrap(err, "leads: create group")
	}
	return &g, nil
}

// ListGroups returns the user's groups.
func (s *Service) ListGroups(ctx context.Context, userID string) ([]model.LeadGroup, error) {
	if err := requireUser(userID, "list groups"); err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list groups")
	}
	return groups, nil
}

// AddToGroup adds one of the user's leads to one of the user's groups.
func (s *Service) AddToGroup(ctx context.Context, userID, groupID, leadID string) (*model.LeadGroup, error) {
	if err := requireUser(userID, "add to group"); err != nil {
		return nil, err
	}
	if _, err := s.store.GetLead(ctx, userID, leadID); err != nil {
		return nil, eris.Wrap(err, "leads: add to group")
	}
	return s.editGroup(ctx, userID, groupID, func(g *model.LeadGroup) bool { return g.Add(leadID) })
}

// RemoveFromGroup removes a lead id from a group. Removing an absent id is a no-op.
func (s *Service) RemoveFromGroup(ctx context.Context, userID, groupID, leadID string) (*model.LeadGroup, error) {
	if err := requireUser(userID, "remove from group"); err != nil {
		return nil, err
	}
	return s.editGroup(ctx, userID, groupID, func(g *model.LeadGroup) bool { return g.Remove(leadID) })
}

// DeleteGroup deletes a group. Its leads are untouched.
func (s *Service) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if err := requireUser(userID, "delete group"); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, userID, groupID); err != nil {
		return eris.Wrap(err, "leads: delete group")
	}
	return nil
}

// GroupLeads returns the group's leads in membership order, skipping ids
// whose lead no longer exists.
func (s *Service) GroupLeads(ctx context.Context, userID, groupID string) ([]model.Lead, error) {
	if err := requireUser(userID, "group leads"); err != nil {
		return nil, err
	}
	g, err := s.store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: group leads")
	}
	return s.resolve(ctx, userID, g.LeadIDs)
}

// resolve maps ids to the user's leads, dropping dangling ids.
func (s *Service) resolve(ctx context.Context, userID string, ids []string) ([]model.Lead, error) {
	all, err := s.store.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: resolve ids")
	}
	byID := make(map[string]model.Lead, len(all))
	for _, l := range all {
		byID[l.ID] = l
	}
	out := make([]model.Lead, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Service) editGroup(ctx context.Context, userID, groupID string, edit func(*model.LeadGroup) bool) (*model.LeadGroup, error) {
	g, err := s.store.GetGroup(ctx, userID, groupID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: edit group")
	}
	if !edit(g) {
		return g, nil
	}
	if now := s.now().UTC(); now.After(g.UpdatedAt) {
		g.UpdatedAt = now
	}
	if err := s.store.UpsertGroup(ctx, *g); err != nil {
		return nil, eris.Wrap(err, "leads: save group")
	}
	return g, nil
}

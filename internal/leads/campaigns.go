package leads

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// CampaignDraft is the user input for CreateCampaign.
type CampaignDraft struct {
	Name     string   `json:"name"`
	Subject  string   `json:"subject"`
	Template string   `json:"template"`
	LeadIDs  []string `json:"lead_ids"`
}

// CreateCampaign stores a draft campaign. Every lead id must belong to the user.
func (s *Service) CreateCampaign(ctx context.Context, userID string, d CampaignDraft) (*model.Campaign, error) {
	if err := requireUser(userID, "create campaign"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Template) == "" {
		return nil, &model.InvalidInputError{Field: "campaign", Reason: "name and template are required"}
	}

	ids := make([]string, 0, len(d.LeadIDs))
	seen := make(map[string]bool, len(d.LeadIDs))
	for _, id := range d.LeadIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.store.GetLead(ctx, userID, id); err != nil {
			return nil, eris.Wrap(err, "leads: campaign lead")
		}
		ids = append(ids, id)
	}

	now := s.now().UTC()
	c := model.Campaign{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(d.Name),
		Subject:   d.Subject,
		Template:  d.Template,
		LeadIDs:   ids,
		Status:    model.CampaignDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertCampaign(ctx, c); err != nil {
		return nil, eris.Wrap(err, "leads: create campaign")
	}
	return &c, nil
}

// ListCampaigns returns the user's campaigns.
func (s *Service) ListCampaigns(ctx context.Context, userID string) ([]model.Campaign, error) {
	if err := requireUser(userID, "list campaigns"); err != nil {
		return nil, err
	}
	cs, err := s.store.ListCampaigns(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list campaigns")
	}
	return cs, nil
}

// GetCampaign returns one campaign.
func (s *Service) GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error) {
	if err := requireUser(userID, "get campaign"); err != nil {
		return nil, err
	}
	c, err := s.store.GetCampaign(ctx, userID, id)
	if err != nil {
		return nil, eris.Wrap(err, "leads: get campaign")
	}
	return c, nil
}

// CampaignLeads returns the campaign's existing leads.
func (s *Service) CampaignLeads(ctx context.Context, userID string, c model.Campaign) ([]model.Lead, error) {
	if err := requireUser(userID, "campaign leads"); err != nil {
		return nil, err
	}
	return s.resolve(ctx, userID, c.LeadIDs)
}

// SetCampaignStatus updates the delivery status.
func (s *Service) SetCampaignStatus(ctx context.Context, userID, id string, status model.CampaignStatus) (*model.Campaign, error) {
	if !status.Valid() {
		return nil, &model.InvalidInputError{Field: "campaign status", Reason: "unknown status " + string(status)}
	}
	c, err := s.GetCampaign(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if now := s.now().UTC(); now.After(c.UpdatedAt) {
		c.UpdatedAt = now
	}
	if err := s.store.UpsertCampaign(ctx, *c); err != nil {
		return nil, eris.Wrap(err, "leads: set campaign status")
	}
	return c, nil
}

// RecordEvent applies a delivery event to its campaign's counters once.
// Replays of the same event id report false and change nothing.
func (s *Service) RecordEvent(ctx context.Context, userID string, ev model.DeliveryEvent) (bool, error) {
	if err := requireUser(userID, "record event"); err != nil {
		return false, err
	}
	if ev.ID == "" {
		return false, &model.InvalidInputError{Field: "event", Reason: "id is required"}
	}
	if !ev.Kind.Valid() {
		return false, &model.InvalidInputError{Field: "event", Reason: "unknown kind " + string(ev.Kind)}
	}

	marked := false
	if s.events != nil {
		seen, err := s.events.Seen(ctx, ev.ID)
		switch {
		case err != nil:
			zap.L().Warn("leads: event dedup cache unavailable", zap.Error(err))
		case seen:
			return false, nil
		default:
			marked = true
		}
	}

	applied, err := s.store.ApplyEvent(ctx, userID, ev, s.now())
	if err != nil {
		// The id must stay unmarked so the provider's retry is counted.
		if marked {
			if ferr := s.events.Forget(context.WithoutCancel(ctx), ev.ID); ferr != nil {
				zap.L().Warn("leads: event dedup cache forget", zap.String("event_id", ev.ID), zap.Error(ferr))
			}
		}
		return false, eris.Wrap(err, "leads: record event")
	}
	return applied, nil
}

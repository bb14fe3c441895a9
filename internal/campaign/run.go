package campaign

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// Campaigns is the campaign storage Launch needs. *leads.Service satisfies it.
type Campaigns interface {
	GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error)
	CampaignLeads(ctx context.Context, userID string, c model.Campaign) ([]model.Lead, error)
	SetCampaignStatus(ctx context.Context, userID, id string, status model.CampaignStatus) (*model.Campaign, error)
	RecordEvent(ctx context.Context, userID string, ev model.DeliveryEvent) (bool, error)
}

// ErrCampaignCompleted is returned when launching a completed campaign.
var ErrCampaignCompleted = eris.New("campaign is already completed")

// Launch activates a campaign, mails its leads and records a sent event
// per accepted message. The sent event id is derived from the message id so
// a provider echo of the same message is not counted twice. A send that runs
// to the end marks the campaign completed; an interrupted one leaves it active.
func Launch(ctx context.Context, svc Campaigns, s *Sender, userID, id string, from From) (*Outcome, error) {
	c, err := svc.GetCampaign(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.CampaignCompleted {
		return nil, ErrCampaignCompleted
	}
	if c.Status != model.CampaignActive {
		if c, err = svc.SetCampaignStatus(ctx, userID, id, model.CampaignActive); err != nil {
			return nil, err
		}
	}

	leads, err := svc.CampaignLeads(ctx, userID, *c)
	if err != nil {
		return nil, err
	}
	out, sendErr := s.Send(ctx, *c, leads, from)

	for _, r := range out.Receipts {
		ev := model.DeliveryEvent{
			ID:         SentEventID(r.MessageID),
			CampaignID: c.ID,
			LeadID:     r.LeadID,
			Kind:       model.EventSent,
			At:         r.SentAt,
		}
		// Recorded with a fresh context so a cancelled send still counts
		// what went out.
		if _, err := svc.RecordEvent(context.WithoutCancel(ctx), userID, ev); err != nil {
			zap.L().Error("campaign: record sent event", zap.String("campaign_id", c.ID), zap.String("message_id", r.MessageID), zap.Error(err))
		}
	}
	if sendErr != nil {
		return out, eris.Wrap(sendErr, "campaign: send")
	}
	if _, err := svc.SetCampaignStatus(context.WithoutCancel(ctx), userID, c.ID, model.CampaignCompleted); err != nil {
		return out, eris.Wrap(err, "campaign: complete")
	}
	return out, nil
}

// SentEventID is the delivery event id of the sent event for a message.
func SentEventID(messageID string) string {
	return "sent:" + messageID
}

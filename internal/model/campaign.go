package model

import "time"

// CampaignStatus is the delivery state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted:
		return true
	}
	return false
}

// CampaignStats are monotonic delivery counters.
type CampaignStats struct {
	Sent      int64 `json:"sent"`
	Opened    int64 `json:"opened"`
	Replied   int64 `json:"replied"`
	Converted int64 `json:"converted"`
}

// OpenRate is opened/sent as a percentage, 0 when nothing was sent.
func (s CampaignStats) OpenRate() float64 { return rate(s.Opened, s.Sent) }

// ReplyRate is replied/sent as a percentage.
func (s CampaignStats) ReplyRate() float64 { return rate(s.Replied, s.Sent) }

// ConversionRate is converted/sent as a percentage.
func (s CampaignStats) ConversionRate() float64 { return rate(s.Converted, s.Sent) }

func rate(n, d int64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// Apply increments the counter matching kind and reports whether a counter moved.
func (s *CampaignStats) Apply(kind EventKind) bool {
	switch kind {
	case EventSent:
		s.Sent++
	case EventOpened:
		s.Opened++
	case EventReplied, EventClicked:
		s.Replied++
	case EventConverted:
		s.Converted++
	default:
		return false
	}
	return true
}

// Campaign is an outreach email sent to a set of leads.
type Campaign struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	LeadIDs   []string       `json:"lead_ids"`
	Status    CampaignStatus `json:"status"`
	Stats     CampaignStats  `json:"stats"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// EventKind classifies an email delivery event.
type EventKind string

const (
	EventSent      EventKind = "sent"
	EventOpened    EventKind = "opened"
	EventReplied   EventKind = "replied"
	EventClicked   EventKind = "clicked"
	EventConverted EventKind = "converted"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventSent, EventOpened, EventReplied, EventClicked, EventConverted:
		return true
	}
	return false
}

// DeliveryEvent is a counter feed entry from the email provider.
type DeliveryEvent struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	LeadID     string    `json:"lead_id,omitempty"`
	Kind       EventKind `json:"kind"`
	At         time.Time `json:"at"`
}

// DeliveryReceipt is returned by the email collaborator for an accepted message.
type DeliveryReceipt struct {
	MessageID  string    `json:"message_id"`
	CampaignID string    `json:"campaign_id"`
	LeadID     string    `json:"lead_id"`
	To         string    `json:"to"`
	SentAt     time.Time `json:"sent_at"`
}

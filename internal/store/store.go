package store

import (
	"context"
	"time"

	"github.com/sells-group/leadforge-cli/internal/model"
)

// LeadRepository persists leads scoped by an opaque user id. A lead owned by
// another user is reported as *model.NotFoundError.
type LeadRepository interface {
	ListLeads(ctx context.Context, userID string) ([]model.Lead, error)
	GetLead(ctx context.Context, userID, id string) (*model.Lead, error)
	UpsertLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	UpsertLeads(ctx context.Context, leads []model.Lead) error
	DeleteLead(ctx context.Context, userID, id string) error
}

// GroupRepository persists lead groups.
type GroupRepository interface {
	ListGroups(ctx context.Context, userID string) ([]model.LeadGroup, error)
	GetGroup(ctx context.Context, userID, id string) (*model.LeadGroup, error)
	UpsertGroup(ctx context.Context, g model.LeadGroup) error
	DeleteGroup(ctx context.Context, userID, id string) error
}

// CampaignRepository persists campaigns and the delivery events applied to them.
type CampaignRepository interface {
	ListCampaigns(ctx context.Context, userID string) ([]model.Campaign, error)
	GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error)
	UpsertCampaign(ctx context.Context, c model.Campaign) error
	// ApplyEvent stores a delivery event id and bumps the matching counter of
	// the user's campaign in one transaction. It reports false for an event id
	// already stored. A campaign the user does not own is *model.NotFoundError.
	ApplyEvent(ctx context.Context, userID string, ev model.DeliveryEvent, now time.Time) (bool, error)
}

// Store is the full persistence surface.
type Store interface {
	LeadRepository
	GroupRepository
	CampaignRepository

	Migrate(ctx context.Context) error
	Close() error
}

// Document tables share one layout: id, owner, JSON body and timestamps.
const (
	tableLeads     = "leads"
	tableGroups    = "lead_groups"
	tableCampaigns = "campaigns"
)

// tsLayout is fixed-width so timestamps sort lexically in SQLite TEXT columns.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Package leads is the user-facing lead service: every operation is scoped
// to one authenticated user and persists through store.Store.
package leads

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/lifecycle"
	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/normalize"
	"github.com/sells-group/leadforge-cli/internal/reconcile"
	"github.com/sells-group/leadforge-cli/internal/store"
)

// EventDeduper is a fast-path check for delivery events already applied.
// Seen reports whether eventID was seen before and records it otherwise.
// Forget drops a recorded id whose event could not be stored.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Service implements lead, group and campaign operations.
type Service struct {
	store  store.Store
	events EventDeduper
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEventDeduper checks delivery events against d before the store.
func WithEventDeduper(d EventDeduper) Option {
	return func(s *Service) { s.events = d }
}

// New creates a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func requireUser(userID, op string) error {
	if userID == "" {
		return &model.NotAuthenticatedError{Op: op}
	}
	return nil
}

// List returns the user's leads with natural-key duplicates collapsed into
// their oldest lead. It does not write; use Dedupe to persist the collapse.
func (s *Service) List(ctx context.Context, userID string) ([]model.Lead, error) {
	if err := requireUser(userID, "list leads"); err != nil {
		return nil, err
	}
	all, err := s.store.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list")
	}
	kept, _ := reconcile.Collapse(all)
	return kept, nil
}

// Get returns one lead.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Lead, error) {
	if err := requireUser(userID, "get lead"); err != nil {
		return nil, err
	}
	l, err := s.store.GetLead(ctx, userID, id)
	if err != nil {
		return nil, eris.Wrap(err, "leads: get")
	}
	return l, nil
}

// CreateManual validates and stores a lead entered by the user. A draft
// whose natural key matches an active lead is rejected.
func (s *Service) CreateManual(ctx context.Context, userID string, draft model.Lead) (*model.Lead, error) {
	if err := requireUser(userID, "create lead"); err != nil {
		return nil, err
	}
	l, err := validateDraft(draft)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load existing")
	}
	key := reconcile.NaturalKey(l)
	for _, e := range existing {
		if e.Active() && reconcile.NaturalKey(e) == key {
			return nil, &model.InvalidLeadError{Index: -1, Reason: "an active lead for this contact already exists: " + e.ID}
		}
	}

	now := s.now().UTC()
	l.UserID = userID
	l.Source = model.SourceManual
	res := reconcile.Reconcile(nil, []model.Lead{l}, now)
	created := res.Created[0]

	saved, err := s.store.UpsertLead(ctx, created)
	if err != nil {
		return nil, eris.Wrap(err, "leads: create")
	}
	zap.L().Info("leads: created manual lead", zap.String("user_id", userID), zap.String("lead_id", saved.ID))
	return saved, nil
}

// Ingest normalizes raw records (provider text, imported rows) with the
// given source and reconciles them into the user's leads.
func (s *Service) Ingest(ctx context.Context, userID string, raw any, source model.Source) (*IngestReport, error) {
	if err := requireUser(userID, "ingest leads"); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	norm, err := normalize.Normalize(raw, normalize.Options{
		UserID:           userID,
		Source:           source,
		KeepRecordStatus: source == model.SourceImported,
		Now:              now,
	})
	if err != nil {
		return nil, eris.Wrap(err, "leads: normalize")
	}

	existing, err := s.store.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load existing")
	}
	res := reconcile.Reconcile(existing, norm.Leads, now)
	if err := s.ApplyReconcile(ctx, userID, res); err != nil {
		return nil, err
	}

	rep := &IngestReport{
		Created:         len(res.Created),
		Merged:          len(res.Merged),
		Unchanged:       len(res.Unchanged),
		Dropped:         norm.Dropped,
		BatchDuplicates: res.BatchDuplicates,
		Warnings:        norm.Warnings,
	}
	for _, e := range norm.Errors {
		rep.DropReasons = append(rep.DropReasons, e.Error())
	}
	return rep, nil
}

// IngestReport summarizes an Ingest call.
type IngestReport struct {
	Created         int      `json:"created"`
	Merged          int      `json:"merged"`
	Unchanged       int      `json:"unchanged"`
	Dropped         int      `json:"dropped"`
	BatchDuplicates int      `json:"batch_duplicates"`
	DropReasons     []string `json:"drop_reasons,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ApplyReconcile persists the created and merged leads of res. Every lead
// must belong to userID.
func (s *Service) ApplyReconcile(ctx context.Context, userID string, res reconcile.Result) error {
	if err := requireUser(userID, "apply reconcile"); err != nil {
		return err
	}
	writes := res.Writes()
	for _, l := range writes {
		if l.UserID != userID {
			return &model.NotFoundError{Entity: "lead", ID: l.ID}
		}
	}
	if err := s.store.UpsertLeads(ctx, writes); err != nil {
		return eris.Wrap(err, "leads: apply reconcile")
	}
	return nil
}

// Transition moves a lead along the lifecycle graph.
func (s *Service) Transition(ctx context.Context, userID, id string, target model.Status) (*model.Lead, error) {
	return s.mutate(ctx, userID, id, "transition lead", func(l model.Lead, now time.Time) (model.Lead, error) {
		return lifecycle.Transition(l, target, now)
	})
}

// ToggleFavorite flips the favorite flag.
func (s *Service) ToggleFavorite(ctx context.Context, userID, id string) (*model.Lead, error) {
	return s.mutate(ctx, userID, id, "toggle favorite", func(l model.Lead, now time.Time) (model.Lead, error) {
		return lifecycle.ToggleFavorite(l, now), nil
	})
}

// SetNotes replaces the notes.
func (s *Service) SetNotes(ctx context.Context, userID, id, notes string) (*model.Lead, error) {
	return s.mutate(ctx, userID, id, "set notes", func(l model.Lead, now time.Time) (model.Lead, error) {
		return lifecycle.SetNotes(l, notes, now), nil
	})
}

// ScheduleFollowUp sets or, with nil, clears the next follow-up date.
func (s *Service) ScheduleFollowUp(ctx context.Context, userID, id string, at *time.Time) (*model.Lead, error) {
	return s.mutate(ctx, userID, id, "schedule follow-up", func(l model.Lead, now time.Time) (model.Lead, error) {
		return lifecycle.ScheduleFollowUp(l, at, now), nil
	})
}

// SetTags replaces the tag set.
func (s *Service) SetTags(ctx context.Context, userID, id string, tags []string) (*model.Lead, error) {
	return s.mutate(ctx, userID, id, "set tags", func(l model.Lead, now time.Time) (model.Lead, error) {
		return lifecycle.SetTags(l, tags, now), nil
	})
}

// Delete removes a lead permanently. Group references to it are left and
// filtered on read.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID, "delete lead"); err != nil {
		return err
	}
	if err := s.store.DeleteLead(ctx, userID, id); err != nil {
		return eris.Wrap(err, "leads: delete")
	}
	return nil
}

// DedupeReport summarizes a Dedupe call.
type DedupeReport struct {
	Kept    int      `json:"kept"`
	Removed []string `json:"removed"`
}

// Dedupe persists Collapse: survivors are written, absorbed duplicates deleted.
func (s *Service) Dedupe(ctx context.Context, userID string) (*DedupeReport, error) {
	if err := requireUser(userID, "dedupe leads"); err != nil {
		return nil, err
	}
	all, err := s.store.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "leads: dedupe list")
	}
	kept, dups := reconcile.Collapse(all)
	rep := &DedupeReport{Kept: len(kept), Removed: []string{}}
	if len(dups) == 0 {
		return rep, nil
	}

	if err := s.store.UpsertLeads(ctx, kept); err != nil {
		return nil, eris.Wrap(err, "leads: dedupe write survivors")
	}
	for _, d := range dups {
		if err := s.store.DeleteLead(ctx, userID, d.ID); err != nil && !model.IsNotFound(err) {
			return nil, eris.Wrapf(err, "leads: dedupe delete %s", d.ID)
		}
		rep.Removed = append(rep.Removed, d.ID)
	}
	zap.L().Info("leads: dedupe complete",
		zap.String("user_id", userID),
		zap.Int("kept", rep.Kept),
		zap.Int("removed", len(rep.Removed)),
	)
	return rep, nil
}

func (s *Service) mutate(ctx context.Context, userID, id, op string, fn func(model.Lead, time.Time) (model.Lead, error)) (*model.Lead, error) {
	if err := requireUser(userID, op); err != nil {
		return nil, err
	}
	cur, err := s.store.GetLead(ctx, userID, id)
	if err != nil {
		return nil, eris.Wrapf(err, "leads: %s", op)
	}
	next, err := fn(*cur, s.now())
	if err != nil {
		return nil, err
	}
	saved, err := s.store.UpsertLead(ctx, next)
	if err != nil {
		return nil, eris.Wrapf(err, "leads: %s", op)
	}
	return saved, nil
}

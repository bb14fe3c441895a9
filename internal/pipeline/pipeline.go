// Package pipeline runs lead generation end to end: brief, provider call,
// normalization, reconciliation against the stored leads, persistence.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/normalize"
	"github.com/sells-group/leadforge-cli/internal/prompt"
	"github.com/sells-group/leadforge-cli/internal/reconcile"
	"github.com/sells-group/leadforge-cli/internal/resilience"
	"github.com/sells-group/leadforge-cli/internal/store"
)

// Request is one generation ask. FreeText wins over Preferences when set.
type Request struct {
	FreeText    string             `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Preferences *model.Preferences `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

// Report summarizes a generation run.
type Report struct {
	Prompt          string        `json:"prompt"`
	Created         int           `json:"created"`
	Merged          int           `json:"merged"`
	Unchanged       int           `json:"unchanged"`
	Dropped         int           `json:"dropped"`
	BatchDuplicates int           `json:"batch_duplicates"`
	DropReasons     []string      `json:"drop_reasons,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	Leads           []model.Lead  `json:"leads"`
	Duration        time.Duration `json:"duration_ns"`
}

// Pipeline wires a provider to a lead repository.
type Pipeline struct {
	provider Provider
	leads    store.LeadRepository
	policy   resilience.Policy
	breaker  *resilience.Breaker
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy overrides the provider retry policy.
func WithPolicy(p resilience.Policy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithBreaker guards provider calls with b.
func WithBreaker(b *resilience.Breaker) Option {
	return func(pl *Pipeline) { pl.breaker = b }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(pl *Pipeline) { pl.now = now }
}

// New creates a Pipeline.
func New(provider Provider, leads store.LeadRepository, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		leads:    leads,
		policy:   resilience.DefaultPolicy(),
		breaker:  resilience.NewBreaker(5, 30*time.Second),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.policy.OnRetry == nil {
		p.policy.OnRetry = resilience.LogRetries("provider", "complete")
	}
	return p
}

// Generate produces leads for userID and reconciles them into the stored set.
// A provider reply without a lead list fails with *model.MalformedResponseError
// carrying the raw text; nothing is written in that case.
func (p *Pipeline) Generate(ctx context.Context, userID string, req Request) (*Report, error) {
	if userID == "" {
		return nil, &model.NotAuthenticatedError{Op: "generate"}
	}
	start := p.now()
	log := zap.L().With(zap.String("user_id", userID))

	brief := prompt.Build(req.FreeText, req.Preferences)
	log.Info("pipeline: requesting leads", zap.Int("prompt_len", len(brief)))

	raw, err := resilience.Retry(ctx, p.policy, func(ctx context.Context) (string, error) {
		return resilience.Guard(ctx, p.breaker, func(ctx context.Context) (string, error) {
			return p.provider.Complete(ctx, prompt.System(), brief)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: provider call")
	}

	norm, err := normalize.Normalize(raw, normalize.Options{
		UserID: userID,
		Source: model.SourceAIGenerated,
		Now:    p.now(),
	})
	if err != nil {
		log.Warn("pipeline: malformed provider response", zap.Error(err))
		return nil, eris.Wrap(err, "pipeline: normalize")
	}

	existing, err := p.leads.ListLeads(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load existing leads")
	}
	rec := reconcile.Reconcile(existing, norm.Leads, p.now())

	writes := rec.Writes()
	if err := p.leads.UpsertLeads(ctx, writes); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist leads")
	}

	report := &Report{
		Prompt:          brief,
		Created:         len(rec.Created),
		Merged:          len(rec.Merged),
		Unchanged:       len(rec.Unchanged),
		Dropped:         norm.Dropped,
		BatchDuplicates: rec.BatchDuplicates,
		Warnings:        norm.Warnings,
		Leads:           writes,
		Duration:        p.now().Sub(start),
	}
	for _, e := range norm.Errors {
		report.DropReasons = append(report.DropReasons, e.Error())
	}

	log.Info("pipeline: generation complete",
		zap.Int("created", report.Created),
		zap.Int("merged", report.Merged),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("dropped", report.Dropped),
		zap.Int("batch_duplicates", report.BatchDuplicates),
	)
	return report, nil
}

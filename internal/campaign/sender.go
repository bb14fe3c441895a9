package campaign

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/resilience"
)

// Failure is a lead that could not be mailed.
type Failure struct {
	LeadID string `json:"lead_id"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// Outcome is the result of a campaign send.
type Outcome struct {
	Receipts []model.DeliveryReceipt `json:"receipts"`
	Failures []Failure               `json:"failures"`
}

// SenderConfig bounds delivery.
type SenderConfig struct {
	// Concurrency caps in-flight sends. Default 4.
	Concurrency int `mapstructure:"concurrency"`
	// RatePerSecond caps message throughput. Zero disables limiting.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	// Retry applies to each message.
	Retry resilience.Policy `mapstructure:"-"`
}

// Sender fans a campaign out to its leads through a Mailer.
type Sender struct {
	mailer  Mailer
	cfg     SenderConfig
	limiter *rate.Limiter
}

// NewSender creates a Sender.
func NewSender(m Mailer, cfg SenderConfig) *Sender {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	s := &Sender{mailer: m, cfg: cfg}
	if cfg.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(int(cfg.RatePerSecond), 1))
	}
	if s.cfg.Retry.OnRetry == nil {
		s.cfg.Retry.OnRetry = resilience.LogRetries("smtp", "send")
	}
	return s
}

// Send mails c to every lead with an email address. Per-lead failures are
// collected rather than aborting the run; only ctx cancellation stops it
// early. Receipts and failures follow the order of leads.
func (s *Sender) Send(ctx context.Context, c model.Campaign, leads []model.Lead, from From) (*Outcome, error) {
	subject := c.Subject
	if subject == "" {
		subject = c.Name
	}

	type slot struct {
		receipt *model.DeliveryReceipt
		failure *Failure
	}
	slots := make([]slot, len(leads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, l := range leads {
		if l.Email == "" {
			slots[i].failure = &Failure{LeadID: l.ID, Reason: "lead has no email address"}
			continue
		}
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			env := Envelope{
				From:       from,
				To:         l.Email,
				Subject:    subject,
				HTML:       Personalize(c.Template, l, from),
				UserID:     c.UserID,
				CampaignID: c.ID,
				LeadID:     l.ID,
			}
			rec, err := resilience.Retry(gctx, s.cfg.Retry, func(ctx context.Context) (model.DeliveryReceipt, error) {
				return s.mailer.Send(ctx, env)
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				slots[i].failure = &Failure{LeadID: l.ID, Email: l.Email, Reason: err.Error()}
				return nil
			}
			slots[i].receipt = &rec
			return nil
		})
	}
	err := g.Wait()

	out := &Outcome{Receipts: []model.DeliveryReceipt{}, Failures: []Failure{}}
	for _, sl := range slots {
		switch {
		case sl.receipt != nil:
			out.Receipts = append(out.Receipts, *sl.receipt)
		case sl.failure != nil:
			out.Failures = append(out.Failures, *sl.failure)
		}
	}
	zap.L().Info("campaign: send finished",
		zap.String("campaign_id", c.ID),
		zap.Int("sent", len(out.Receipts)),
		zap.Int("failed", len(out.Failures)),
	)
	return out, err
}

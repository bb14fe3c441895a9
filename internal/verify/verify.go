// Package verify re-checks stored leads against the live web and folds what
// it finds back in through the freshness merge.
package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/reconcile"
	"github.com/sells-group/leadforge-cli/internal/resilience"
	"github.com/sells-group/leadforge-cli/pkg/jina"
)

// Leads is the slice of the lead service verification needs.
type Leads interface {
	List(ctx context.Context, userID string) ([]model.Lead, error)
	ApplyReconcile(ctx context.Context, userID string, res reconcile.Result) error
}

// Finding is the outcome of checking one lead.
type Finding struct {
	LeadID   string `json:"lead_id"`
	Company  string `json:"company,omitempty"`
	Website  string `json:"website,omitempty"`
	Verified bool   `json:"verified"`
	Title    string `json:"title,omitempty"`
	News     string `json:"news,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Tokens   int    `json:"tokens,omitempty"`
}

// Report summarizes a verification run.
type Report struct {
	Checked  int       `json:"checked"`
	Verified int       `json:"verified"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Tokens   int       `json:"tokens"`
	Findings []Finding `json:"findings"`
}

// Verifier reads lead websites and searches for company news through Jina.
type Verifier struct {
	reader      jina.Client
	concurrency int
	policy      resilience.Policy
	now         func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithConcurrency bounds parallel lookups. Default 4.
func WithConcurrency(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithPolicy overrides the retry policy for website reads.
func WithPolicy(p resilience.Policy) Option {
	return func(v *Verifier) { v.policy = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// New creates a Verifier.
func New(reader jina.Client, opts ...Option) *Verifier {
	v := &Verifier{reader: reader, concurrency: 4, policy: resilience.DefaultPolicy(), now: time.Now}
	for _, o := range opts {
		o(v)
	}
	if v.policy.OnRetry == nil {
		v.policy.OnRetry = resilience.LogRetries("jina", "read")
	}
	return v
}

// Check looks up one lead, retrying transient read failures. A lead is
// verified when its website answers;
// the returned record then carries only identity, the evidence found and a
// VerificationDate of now, ready to merge. It is nil otherwise.
func (v *Verifier) Check(ctx context.Context, l model.Lead) (*model.Lead, Finding) {
	f := Finding{LeadID: l.ID, Company: l.Company, Website: websiteURL(l.Website)}
	if f.Website == "" {
		f.Reason = "no website"
		return nil, f
	}

	page, err := resilience.Retry(ctx, v.policy, func(ctx context.Context) (*jina.ReadResponse, error) {
		return v.reader.Read(ctx, f.Website)
	})
	if err != nil {
		f.Reason = err.Error()
		return nil, f
	}
	if page.Data.Content == "" {
		f.Reason = "website returned no content"
		return nil, f
	}
	f.Verified = true
	f.Title = page.Data.Title
	f.Tokens = page.Data.Usage.Tokens

	now := v.now().UTC()
	out := model.Lead{
		ID:               l.ID,
		UserID:           l.UserID,
		FirstName:        l.FirstName,
		LastName:         l.LastName,
		Email:            l.Email,
		Company:          l.Company,
		VerificationDate: &now,
		NormalizedAt:     now,
	}
	out.Evidence.URLs = appendURL(l.Evidence.URLs, f.Website)

	if l.Company != "" {
		res, err := v.reader.Search(ctx, l.Company+" news")
		switch {
		case err != nil:
			zap.L().Debug("verify: news search failed", zap.String("lead_id", l.ID), zap.Error(err))
		case len(res.Data) > 0:
			top := res.Data[0]
			f.News = top.Title
			out.Evidence.CompanyNews = strings.TrimSpace(top.Title + " " + top.URL)
		}
	}
	return &out, f
}

// Run checks every active lead of userID that has a website and persists
// the verified ones through reconcile.Reconcile. Lookup failures are
// reported per lead; only listing and persisting abort the run.
func Run(ctx context.Context, svc Leads, v *Verifier, userID string) (*Report, error) {
	all, err := svc.List(ctx, userID)
	if err != nil {
		return nil, eris.Wrap(err, "verify: list leads")
	}

	targets := make([]model.Lead, 0, len(all))
	rep := &Report{}
	for _, l := range all {
		if !l.Active() || websiteURL(l.Website) == "" {
			rep.Skipped++
			continue
		}
		targets = append(targets, l)
	}

	found := make([]*model.Lead, len(targets))
	findings := make([]Finding, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, l := range targets {
		g.Go(func() error {
			found[i], findings[i] = v.Check(gctx, l)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "verify: run")
	}

	incoming := make([]model.Lead, 0, len(found))
	for i, l := range found {
		rep.Checked++
		rep.Tokens += findings[i].Tokens
		if l != nil {
			rep.Verified++
			incoming = append(incoming, *l)
		}
	}
	rep.Findings = findings

	res := reconcile.Reconcile(all, incoming, v.now())
	if err := svc.ApplyReconcile(ctx, userID, res); err != nil {
		return nil, eris.Wrap(err, "verify: persist")
	}
	rep.Updated = len(res.Merged)

	zap.L().Info("verify: run finished",
		zap.String("user_id", userID),
		zap.Int("checked", rep.Checked),
		zap.Int("verified", rep.Verified),
		zap.Int("updated", rep.Updated),
		zap.Int("tokens", rep.Tokens),
	)
	return rep, nil
}

func websiteURL(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
		site = fmt.Sprintf("https://%s", site)
	}
	return site
}

func appendURL(urls []string, u string) []string {
	out := append([]string(nil), urls...)
	for _, existing := range out {
		if existing == u {
			return out
		}
	}
	return append(out, u)
}

package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/campaign"
	"github.com/sells-group/leadforge-cli/internal/leads"
	"github.com/sells-group/leadforge-cli/internal/pipeline"
	"github.com/sells-group/leadforge-cli/internal/resilience"
	"github.com/sells-group/leadforge-cli/internal/store"
	"github.com/sells-group/leadforge-cli/pkg/anthropic"
	"github.com/sells-group/leadforge-cli/pkg/gemini"
	"github.com/sells-group/leadforge-cli/pkg/notion"
	"github.com/sells-group/leadforge-cli/pkg/perplexity"
	sfpkg "github.com/sells-group/leadforge-cli/pkg/salesforce"
)

// appEnv holds the collaborators a command opened. Close releases them.
type appEnv struct {
	Store  store.Store
	Leads  *leads.Service
	closer []func() error
}

func (e *appEnv) Close() {
	for i := len(e.closer) - 1; i >= 0; i-- {
		if err := e.closer[i](); err != nil {
			zap.L().Warn("close resource", zap.Error(err))
		}
	}
}

// initEnv validates cfg for mode and opens the store and lead service.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &appEnv{Store: st, closer: []func() error{st.Close}}
	if err := st.Migrate(ctx); err != nil {
		env.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var opts []leads.Option
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		env.closer = append(env.closer, rdb.Close)
		opts = append(opts, leads.WithEventDeduper(campaign.NewRedisEventFilter(rdb, cfg.Campaign.EventTTL)))
	} else {
		opts = append(opts, leads.WithEventDeduper(campaign.NewMemoryEventFilter(cfg.Campaign.EventTTL)))
	}
	env.Leads = leads.New(st, opts...)
	return env, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func retryPolicy() resilience.Policy {
	p := resilience.DefaultPolicy()
	p.Attempts = cfg.Retry.Attempts
	p.BaseDelay = cfg.Retry.BaseDelay
	p.MaxDelay = cfg.Retry.MaxDelay
	return p
}

func initProvider(ctx context.Context) (pipeline.Provider, error) {
	switch cfg.Provider.Name {
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.Gemini.Key, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, err
		}
		temp := float32(cfg.Provider.Temperature)
		return &pipeline.GeminiProvider{Client: c, Model: cfg.Gemini.Model, Temperature: &temp}, nil
	case "perplexity":
		temp := cfg.Provider.Temperature
		return &pipeline.PerplexityProvider{
			Client:      perplexity.NewClient(cfg.Perplexity.Key, perplexity.WithModel(cfg.Perplexity.Model)),
			Model:       cfg.Perplexity.Model,
			Temperature: &temp,
		}, nil
	default:
		temp := cfg.Provider.Temperature
		return &pipeline.AnthropicProvider{
			Client:      anthropic.NewClient(cfg.Anthropic.Key),
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Temperature: &temp,
		}, nil
	}
}

func initPipeline(ctx context.Context, st store.Store) (*pipeline.Pipeline, error) {
	provider, err := initProvider(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.New(provider, st,
		pipeline.WithPolicy(retryPolicy()),
		pipeline.WithBreaker(resilience.NewBreaker(cfg.Retry.BreakerThreshold, cfg.Retry.BreakerCooldown)),
	), nil
}

func initSender() *campaign.Sender {
	mailer := campaign.NewSMTPMailer(campaign.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		Domain:   cfg.SMTP.Domain,
	})
	return campaign.NewSender(mailer, campaign.SenderConfig{
		Concurrency:   cfg.Campaign.Concurrency,
		RatePerSecond: cfg.Campaign.RatePerSecond,
		Retry:         retryPolicy(),
	})
}

func senderProfile() campaign.From {
	return campaign.From{
		Name:      cfg.User.Name,
		Email:     cfg.User.Email,
		Role:      cfg.User.Role,
		Signature: cfg.User.Signature,
	}
}

func initNotion() notion.Client {
	return notion.NewClient(cfg.Notion.Token)
}

func initSalesforce() (sfpkg.Client, error) {
	return sfpkg.Connect(sfpkg.Credentials{
		Domain:       cfg.Salesforce.Domain,
		ClientID:     cfg.Salesforce.ClientID,
		ClientSecret: cfg.Salesforce.ClientSecret,
		AccessToken:  cfg.Salesforce.AccessToken,
	}, sfpkg.WithRateLimit(cfg.Salesforce.RateLimit))
}

// commandTimeout bounds one-shot commands.
const commandTimeout = 10 * time.Minute

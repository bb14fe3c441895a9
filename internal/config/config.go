package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leadforge-cli/internal/db"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Provider   ProviderConfig   `yaml:"provider" mapstructure:"provider"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Verify     VerifyConfig     `yaml:"verify" mapstructure:"verify"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	SMTP       SMTPConfig       `yaml:"smtp" mapstructure:"smtp"`
	Campaign   CampaignConfig   `yaml:"campaign" mapstructure:"campaign"`
	Redis      RedisConfig      `yaml:"redis" mapstructure:"redis"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	User       UserConfig       `yaml:"user" mapstructure:"user"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string         `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string         `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string         `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        *db.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ProviderConfig selects the generative-text provider.
type ProviderConfig struct {
	// Name is "anthropic", "gemini" or "perplexity".
	Name        string  `yaml:"name" mapstructure:"name"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina Reader and Search settings.
type JinaConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// VerifyConfig bounds lead verification.
type VerifyConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// RetryConfig configures provider and SMTP retries and the provider circuit
// breaker.
type RetryConfig struct {
	Attempts         int           `yaml:"attempts" mapstructure:"attempts"`
	BaseDelay        time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay         time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	BreakerThreshold int           `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Domain   string `yaml:"domain" mapstructure:"domain"`
}

// CampaignConfig bounds campaign delivery.
type CampaignConfig struct {
	Concurrency   int           `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	EventTTL      time.Duration `yaml:"event_ttl" mapstructure:"event_ttl"`
}

// RedisConfig configures the shared delivery-event filter. An empty Addr
// keeps the filter in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// NotionConfig holds Notion API credentials and database IDs.
type NotionConfig struct {
	Token    string `yaml:"token" mapstructure:"token"`
	LeadDB   string `yaml:"lead_db" mapstructure:"lead_db"`
	ExportDB string `yaml:"export_db" mapstructure:"export_db"`
}

// SalesforceConfig holds Salesforce OAuth settings.
type SalesforceConfig struct {
	Domain       string  `yaml:"domain" mapstructure:"domain"`
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	AccessToken  string  `yaml:"access_token" mapstructure:"access_token"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// UserConfig is the CLI's default identity and the sender profile used in
// campaign emails.
type UserConfig struct {
	ID        string `yaml:"id" mapstructure:"id"`
	Name      string `yaml:"name" mapstructure:"name"`
	Email     string `yaml:"email" mapstructure:"email"`
	Role      string `yaml:"role" mapstructure:"role"`
	Signature string `yaml:"signature" mapstructure:"signature"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional; existing environment variables win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "leadforge.db")
	v.SetDefault("provider.name", "anthropic")
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("verify.concurrency", 4)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.base_delay", "500ms")
	v.SetDefault("retry.max_delay", "20s")
	v.SetDefault("retry.breaker_threshold", 5)
	v.SetDefault("retry.breaker_cooldown", "30s")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("campaign.concurrency", 4)
	v.SetDefault("campaign.rate_per_second", 5)
	v.SetDefault("campaign.event_ttl", "168h")
	v.SetDefault("salesforce.rate_limit", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", "2m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Modes: "generate",
// "leads", "campaign", "import", "verify", "export-salesforce",
// "export-notion", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string
	req := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	switch c.Store.Driver {
	case "sqlite":
		req(c.Store.SQLitePath != "", "store.sqlite_path is required")
	case "postgres":
		req(c.Store.DatabaseURL != "", "store.database_url is required")
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}

	provider := func() {
		switch c.Provider.Name {
		case "anthropic":
			req(c.Anthropic.Key != "", "anthropic.key is required")
		case "gemini":
			req(c.Gemini.Key != "", "gemini.key is required")
		case "perplexity":
			req(c.Perplexity.Key != "", "perplexity.key is required")
		default:
			errs = append(errs, fmt.Sprintf("provider.name %q must be anthropic, gemini or perplexity", c.Provider.Name))
		}
		req(c.Provider.Temperature >= 0 && c.Provider.Temperature <= 1, "provider.temperature must be between 0 and 1")
		req(c.Retry.Attempts >= 1 && c.Retry.Attempts <= 10, "retry.attempts must be between 1 and 10")
	}
	smtp := func() {
		req(c.SMTP.Host != "", "smtp.host is required")
		req(c.SMTP.Port > 0, "smtp.port must be > 0")
		req(c.User.Email != "", "user.email is required")
		req(c.Campaign.Concurrency >= 1 && c.Campaign.Concurrency <= 50, "campaign.concurrency must be between 1 and 50")
	}

	switch mode {
	case "generate":
		provider()
	case "leads", "import":
	case "campaign":
		smtp()
	case "verify":
		req(c.Jina.Key != "", "jina.key is required")
		req(c.Verify.Concurrency >= 1 && c.Verify.Concurrency <= 20, "verify.concurrency must be between 1 and 20")
	case "export-salesforce":
		req(c.Salesforce.Domain != "", "salesforce.domain is required")
		req(c.Salesforce.AccessToken != "" || (c.Salesforce.ClientID != "" && c.Salesforce.ClientSecret != ""),
			"salesforce.access_token or salesforce.client_id and client_secret are required")
	case "export-notion":
		req(c.Notion.Token != "", "notion.token is required")
		req(c.Notion.ExportDB != "", "notion.export_db is required")
	case "serve":
		req(c.Server.Port > 0 && c.Server.Port < 65536, "server.port must be > 0")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

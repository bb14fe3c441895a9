package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadforge.db", cfg.Store.SQLitePath)
	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.InDelta(t, 0.7, cfg.Provider.Temperature, 0.001)
	assert.Equal(t, 4096, cfg.Anthropic.MaxTokens)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.BreakerCooldown)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 4, cfg.Campaign.Concurrency)
	assert.Equal(t, 4, cfg.Verify.Concurrency)
	assert.Equal(t, 168*time.Hour, cfg.Campaign.EventTTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leadforge
provider:
  name: gemini
user:
  id: u-123
  name: Grace
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leadforge", cfg.Store.DatabaseURL)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, "u-123", cfg.User.ID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Retry.Attempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADFORGE_STORE_DRIVER", "postgres")
	t.Setenv("LEADFORGE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEADFORGE_ANTHROPIC_KEY=sk-ant-from-dotenv\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("LEADFORGE_ANTHROPIC_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-from-dotenv", cfg.Anthropic.Key)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = "leadforge.db"
	cfg.Provider.Name = "anthropic"
	cfg.Provider.Temperature = 0.7
	cfg.Retry.Attempts = 3
	cfg.SMTP.Port = 587
	cfg.Campaign.Concurrency = 4
	cfg.Verify.Concurrency = 4
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateGenerate(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("generate"))

	cfg.Provider.Name = "gemini"
	assert.ErrorContains(t, cfg.Validate("generate"), "gemini.key is required")

	cfg.Provider.Name = "perplexity"
	assert.ErrorContains(t, cfg.Validate("generate"), "perplexity.key is required")
	cfg.Perplexity.Key = "pplx-key"
	assert.NoError(t, cfg.Validate("generate"))

	cfg.Provider.Name = "openai"
	assert.ErrorContains(t, cfg.Validate("generate"), `provider.name "openai"`)
}

func TestValidateGenerate_Bounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "k"

	cfg.Provider.Temperature = 1.5
	assert.ErrorContains(t, cfg.Validate("generate"), "provider.temperature")

	cfg.Provider.Temperature = 0.2
	cfg.Retry.Attempts = 0
	assert.ErrorContains(t, cfg.Validate("generate"), "retry.attempts must be between 1 and 10")
}

func TestValidateStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate("leads"), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/leadforge"
	assert.NoError(t, cfg.Validate("leads"))

	cfg.Store.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate("leads"), "must be sqlite or postgres")
}

func TestValidateCampaign(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("campaign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.host is required")
	assert.Contains(t, err.Error(), "user.email is required")

	cfg.SMTP.Host = "smtp.example.com"
	cfg.User.Email = "grace@example.com"
	assert.NoError(t, cfg.Validate("campaign"))

	cfg.Campaign.Concurrency = 51
	assert.ErrorContains(t, cfg.Validate("campaign"), "campaign.concurrency must be between 1 and 50")
}

func TestValidateVerify(t *testing.T) {
	cfg := validDefaults()
	assert.ErrorContains(t, cfg.Validate("verify"), "jina.key is required")

	cfg.Jina.Key = "jina_key"
	assert.NoError(t, cfg.Validate("verify"))

	cfg.Verify.Concurrency = 0
	assert.ErrorContains(t, cfg.Validate("verify"), "verify.concurrency")
}

func TestValidateExport(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("export-salesforce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.domain is required")

	cfg.Salesforce.Domain = "acme.my.salesforce.com"
	cfg.Salesforce.AccessToken = "00D..."
	assert.NoError(t, cfg.Validate("export-salesforce"))

	assert.ErrorContains(t, cfg.Validate("export-notion"), "notion.token is required")
	cfg.Notion.Token = "ntn_token"
	cfg.Notion.ExportDB = "db"
	assert.NoError(t, cfg.Validate("export-notion"))
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	assert.ErrorContains(t, cfg.Validate("serve"), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadforge-cli/internal/config"
	"github.com/sells-group/leadforge-cli/internal/model"
)

func subcommandNames(c *cobra.Command) map[string]bool {
	names := make(map[string]bool)
	for _, sub := range c.Commands() {
		names[sub.Name()] = true
	}
	return names
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := subcommandNames(rootCmd)

	expected := []string{"generate", "leads", "groups", "campaign", "import", "verify", "export", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leadforge", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("user"))
}

func TestLeadsCommand_HasSubcommands(t *testing.T) {
	names := subcommandNames(leadsCmd)
	for _, name := range []string{"list", "add", "status", "favorite", "note", "follow-up", "tag", "delete", "dedupe"} {
		assert.True(t, names[name], "leads should have subcommand %q", name)
	}
}

func TestGroupsAndCampaign_HaveSubcommands(t *testing.T) {
	groups := subcommandNames(groupsCmd)
	for _, name := range []string{"list", "create", "show", "add", "remove", "delete"} {
		assert.True(t, groups[name], "groups should have subcommand %q", name)
	}
	campaigns := subcommandNames(campaignCmd)
	for _, name := range []string{"create", "list", "show", "status", "send"} {
		assert.True(t, campaigns[name], "campaign should have subcommand %q", name)
	}
	exports := subcommandNames(exportCmd)
	assert.True(t, exports["salesforce"])
	assert.True(t, exports["notion"])
}

func TestGenerateCommand_Flags(t *testing.T) {
	for _, name := range []string{"prompt", "prefs"} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), "generate should have --%s flag", name)
	}
}

func TestImportCommand_Flags(t *testing.T) {
	for _, name := range []string{"csv", "xlsx", "sheet", "notion-db"} {
		assert.NotNil(t, importCmd.Flags().Lookup(name), "import should have --%s flag", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCurrentUser(t *testing.T) {
	oldCfg, oldFlag := cfg, userFlag
	t.Cleanup(func() { cfg, userFlag = oldCfg, oldFlag })

	cfg = &config.Config{User: config.UserConfig{ID: "from-config"}}
	userFlag = ""
	assert.Equal(t, "from-config", currentUser())

	userFlag = "from-flag"
	assert.Equal(t, "from-flag", currentUser())
}

func TestReadPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	body := "industries: [Healthcare, Retail]\nproject_types: [Mobile App]\nbudget_range: {min: 50000, max: 150000}\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	prefs, err := readPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Healthcare", "Retail"}, prefs.Industries)
	assert.Equal(t, []string{"Mobile App"}, prefs.ProjectTypes)
	require.NotNil(t, prefs.BudgetRange)
	assert.Equal(t, int64(50000), prefs.BudgetRange.Min)
	assert.Equal(t, int64(150000), prefs.BudgetRange.Max)

	_, err = readPreferences(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })

	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.Bytes()
}

func TestLeadsAddAndList_SQLite(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("LEADFORGE_LOG_LEVEL", "error")

	out := execute(t, "leads", "add", "--user", "u-1",
		"--first-name", "Ada", "--last-name", "Lovelace",
		"--email", "ada@analytical.io", "--company", "Analytical Engines")
	var created model.Lead
	require.NoError(t, json.Unmarshal(out, &created))
	assert.Equal(t, "u-1", created.UserID)
	assert.Equal(t, model.StatusNew, created.Status)
	assert.Equal(t, model.SourceManual, created.Source)

	out = execute(t, "leads", "status", "--user", "u-1", created.ID, "contacted")
	var moved model.Lead
	require.NoError(t, json.Unmarshal(out, &moved))
	assert.Equal(t, model.StatusContacted, moved.Status)

	out = execute(t, "leads", "list", "--user", "u-1")
	var listed []model.Lead
	require.NoError(t, json.Unmarshal(out, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Another user sees nothing.
	out = execute(t, "leads", "list", "--user", "u-2")
	require.NoError(t, json.Unmarshal(out, &listed))
	assert.Empty(t, listed)
}

func TestImportCommand_RequiresOneSource(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("LEADFORGE_LOG_LEVEL", "error")

	rootCmd.SetArgs([]string{"import", "--user", "u-1"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of")
}

package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadforge-cli/internal/model"
	"github.com/sells-group/leadforge-cli/internal/pipeline"
)

var (
	generatePrompt string
	generatePrefs  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate leads from a brief or a preferences file",
	Long: `Asks the configured provider for prospective clients, normalizes the reply
and reconciles it into the user's leads. --prompt wins over --prefs.

A preferences file is YAML:

  industries: [Healthcare, Retail]
  project_types: [Mobile App]
  budget_range: {min: 50000, max: 150000}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		req := pipeline.Request{FreeText: generatePrompt}
		if generatePrefs != "" {
			prefs, err := readPreferences(generatePrefs)
			if err != nil {
				return err
			}
			req.Preferences = prefs
		}

		env, err := initEnv(ctx, "generate")
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := initPipeline(ctx, env.Store)
		if err != nil {
			return eris.Wrap(err, "generate: init provider")
		}

		rep, err := p.Generate(ctx, currentUser(), req)
		if err != nil {
			return err
		}
		zap.L().Info("generate: complete",
			zap.Int("created", rep.Created),
			zap.Int("merged", rep.Merged),
			zap.Int("dropped", rep.Dropped),
			zap.Duration("duration", rep.Duration),
		)
		return printJSON(rep)
	},
}

func readPreferences(path string) (*model.Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "generate: read preferences %s", path)
	}
	var prefs model.Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, eris.Wrapf(err, "generate: parse preferences %s", path)
	}
	return &prefs, nil
}

func init() {
	generateCmd.Flags().StringVar(&generatePrompt, "prompt", "", "free-text brief")
	generateCmd.Flags().StringVar(&generatePrefs, "prefs", "", "path to a YAML preferences file")
	rootCmd.AddCommand(generateCmd)
}

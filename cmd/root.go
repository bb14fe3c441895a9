package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/config"
)

var (
	cfg      *config.Config
	userFlag string
)

var rootCmd = &cobra.Command{
	Use:   "leadforge",
	Short: "AI lead generation and outreach",
	Long:  "Generates prospective client leads with a generative-text provider, reconciles them into a per-user lead book, runs email campaigns and exports qualified leads to CRMs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "user id to act as (default from user.id config)")
}

// currentUser is the --user flag, falling back to the configured user.
func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	if cfg != nil {
		return cfg.User.ID
	}
	return ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

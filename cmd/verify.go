package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadforge-cli/internal/verify"
	"github.com/sells-group/leadforge-cli/pkg/jina"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-check lead websites and company news",
	Long: `Reads each active lead's website through Jina Reader and searches for
recent company news. Leads whose site answers get a fresh verification date
and evidence, merged under the freshness rule; user edits are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		env, err := initEnv(ctx, "verify")
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := verify.Run(ctx, env.Leads, initVerifier(), currentUser())
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

func initVerifier() *verify.Verifier {
	return verify.New(jina.NewClient(cfg.Jina.Key),
		verify.WithConcurrency(cfg.Verify.Concurrency),
		verify.WithPolicy(retryPolicy()),
	)
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

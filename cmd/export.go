package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/export"
	"github.com/sells-group/leadforge-cli/internal/model"
)

type exporter interface {
	Export(ctx context.Context, leads []model.Lead) (*export.Result, error)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Push qualified, proposal and converted leads to a CRM",
}

// runExport loads the user's leads and hands them to the exporter built by mk.
func runExport(cmd *cobra.Command, mode, target string, mk func() (exporter, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	env, err := initEnv(ctx, mode)
	if err != nil {
		return err
	}
	defer env.Close()

	all, err := env.Leads.List(ctx, currentUser())
	if err != nil {
		return err
	}
	ex, err := mk()
	if err != nil {
		return err
	}
	res, err := ex.Export(ctx, all)
	if err != nil {
		return err
	}
	zap.L().Info("export: complete",
		zap.String("target", target),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return printJSON(res)
}

var exportSalesforceCmd = &cobra.Command{
	Use:   "salesforce",
	Short: "Create Salesforce Lead records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "export-salesforce", "salesforce", func() (exporter, error) {
			c, err := initSalesforce()
			if err != nil {
				return nil, err
			}
			return export.NewSalesforce(c), nil
		})
	},
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Create pages in the Notion export database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, "export-notion", "notion", func() (exporter, error) {
			return export.NewNotion(initNotion(), cfg.Notion.ExportDB), nil
		})
	},
}

func init() {
	exportCmd.AddCommand(exportSalesforceCmd, exportNotionCmd)
	rootCmd.AddCommand(exportCmd)
}

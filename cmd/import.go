package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/importer"
	"github.com/sells-group/leadforge-cli/internal/model"
)

var (
	importCSV      string
	importXLSX     string
	importSheet    string
	importNotionDB string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV, XLSX or Notion database",
	Long: `Reads lead rows from one source, normalizes them like provider output and
reconciles them into the user's leads. Common header spellings ("First Name",
"E-mail", "Organization") are mapped to lead fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		notionDB := importNotionDB
		if importCSV == "" && importXLSX == "" && notionDB == "" {
			notionDB = cfg.Notion.LeadDB
		}
		sources := 0
		for _, s := range []string{importCSV, importXLSX, notionDB} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return eris.New("import: exactly one of --csv, --xlsx or --notion-db is required")
		}

		env, err := initEnv(ctx, "import")
		if err != nil {
			return err
		}
		defer env.Close()

		var rows []map[string]any
		switch {
		case importCSV != "":
			rows, err = importer.ReadCSV(importCSV)
		case importXLSX != "":
			rows, err = importer.ReadXLSX(importXLSX, importSheet)
		default:
			if cfg.Notion.Token == "" {
				return eris.New("import: notion.token is required")
			}
			rows, err = importer.FromNotion(ctx, initNotion(), notionDB)
		}
		if err != nil {
			return err
		}
		zap.L().Info("import: rows read", zap.Int("rows", len(rows)))

		rep, err := env.Leads.Ingest(ctx, currentUser(), rows, model.SourceImported)
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSV, "csv", "", "path to a CSV file")
	importCmd.Flags().StringVar(&importXLSX, "xlsx", "", "path to an XLSX workbook")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	importCmd.Flags().StringVar(&importNotionDB, "notion-db", "", "Notion database id (default from notion.lead_db)")
	rootCmd.AddCommand(importCmd)
}

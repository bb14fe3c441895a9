package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadforge-cli/internal/leads"
	"github.com/sells-group/leadforge-cli/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage the user's leads",
}

// withLeads opens the lead service and calls fn with it.
func withLeads(cmd *cobra.Command, fn func(ctx context.Context, svc *leads.Service, user string) (any, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	env, err := initEnv(ctx, "leads")
	if err != nil {
		return err
	}
	defer env.Close()

	out, err := fn(ctx, env.Leads, currentUser())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return printJSON(out)
}

var (
	listStatus   string
	listFavorite bool
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			all, err := svc.List(ctx, user)
			if err != nil {
				return nil, err
			}
			out := make([]model.Lead, 0, len(all))
			for _, l := range all {
				if listStatus != "" && l.Status != model.Status(listStatus) {
					continue
				}
				if listFavorite && !l.IsFavorite {
					continue
				}
				out = append(out, l)
			}
			return out, nil
		})
	},
}

var addDraft model.Lead

var leadsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a lead by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.CreateManual(ctx, user, addDraft)
		})
	},
}

var leadsStatusCmd = &cobra.Command{
	Use:   "status <lead-id> <status>",
	Short: "Move a lead through the pipeline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.Transition(ctx, user, args[0], model.Status(args[1]))
		})
	},
}

var leadsFavoriteCmd = &cobra.Command{
	Use:   "favorite <lead-id>",
	Short: "Toggle a lead's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.ToggleFavorite(ctx, user, args[0])
		})
	},
}

var leadsNoteCmd = &cobra.Command{
	Use:   "note <lead-id> <text>",
	Short: "Replace a lead's notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.SetNotes(ctx, user, args[0], strings.Join(args[1:], " "))
		})
	},
}

var followUpClear bool

var leadsFollowUpCmd = &cobra.Command{
	Use:   "follow-up <lead-id> [RFC3339 time]",
	Short: "Schedule or clear a follow-up",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var at *time.Time
		if !followUpClear {
			if len(args) < 2 {
				return eris.New("follow-up: a time or --clear is required")
			}
			t, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return eris.Wrap(err, "follow-up: parse time")
			}
			at = &t
		}
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.ScheduleFollowUp(ctx, user, args[0], at)
		})
	},
}

var leadsTagCmd = &cobra.Command{
	Use:   "tag <lead-id> [tag...]",
	Short: "Replace a lead's tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.SetTags(ctx, user, args[0], args[1:])
		})
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <lead-id>",
	Short: "Delete a lead and drop it from groups and campaigns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return nil, svc.Delete(ctx, user, args[0])
		})
	},
}

var leadsDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Collapse duplicate leads into their oldest record",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.Dedupe(ctx, user)
		})
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&listStatus, "status", "", "only leads with this status")
	leadsListCmd.Flags().BoolVar(&listFavorite, "favorite", false, "only favorite leads")

	f := leadsAddCmd.Flags()
	f.StringVar(&addDraft.FirstName, "first-name", "", "contact first name")
	f.StringVar(&addDraft.LastName, "last-name", "", "contact last name")
	f.StringVar(&addDraft.Title, "title", "", "contact title")
	f.StringVar(&addDraft.Email, "email", "", "contact email")
	f.StringVar(&addDraft.Phone, "phone", "", "contact phone")
	f.StringVar(&addDraft.Company, "company", "", "company name")
	f.StringVar(&addDraft.Website, "website", "", "company website")
	f.StringVar(&addDraft.Industry, "industry", "", "industry")
	f.StringVar(&addDraft.ProjectType, "project-type", "", "project type")
	f.StringVar(&addDraft.Requirements, "requirements", "", "project requirements")
	f.StringVar(&addDraft.Notes, "notes", "", "notes")
	f.StringSliceVar(&addDraft.Tags, "tag", nil, "tag (repeatable)")

	leadsFollowUpCmd.Flags().BoolVar(&followUpClear, "clear", false, "clear the follow-up date")

	leadsCmd.AddCommand(leadsListCmd, leadsAddCmd, leadsStatusCmd, leadsFavoriteCmd,
		leadsNoteCmd, leadsFollowUpCmd, leadsTagCmd, leadsDeleteCmd, leadsDedupeCmd)
	rootCmd.AddCommand(leadsCmd)
}

package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadforge-cli/internal/campaign"
	"github.com/sells-group/leadforge-cli/internal/leads"
	"github.com/sells-group/leadforge-cli/internal/model"
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Create and send email campaigns",
}

var (
	campaignDraft        leads.CampaignDraft
	campaignTemplateFile string
	campaignGroup        string
)

var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft campaign",
	Long: `Creates a draft campaign. The template may use {{lead.name}},
{{lead.first_name}}, {{lead.company}}, {{user.name}}, {{user.role}} and
{{user.signature}}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := campaignDraft
		if campaignTemplateFile != "" {
			b, err := os.ReadFile(campaignTemplateFile)
			if err != nil {
				return eris.Wrapf(err, "campaign: read template %s", campaignTemplateFile)
			}
			d.Template = string(b)
		}
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			if campaignGroup != "" {
				members, err := svc.GroupLeads(ctx, user, campaignGroup)
				if err != nil {
					return nil, err
				}
				for _, l := range members {
					d.LeadIDs = append(d.LeadIDs, l.ID)
				}
			}
			return svc.CreateCampaign(ctx, user, d)
		})
	},
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns with their delivery stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.ListCampaigns(ctx, user)
		})
	},
}

var campaignShowCmd = &cobra.Command{
	Use:   "show <campaign-id>",
	Short: "Show a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.GetCampaign(ctx, user, args[0])
		})
	},
}

var campaignStatusCmd = &cobra.Command{
	Use:   "status <campaign-id> <draft|active|paused|completed>",
	Short: "Set a campaign's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.SetCampaignStatus(ctx, user, args[0], model.CampaignStatus(args[1]))
		})
	},
}

var campaignSendCmd = &cobra.Command{
	Use:   "send <campaign-id>",
	Short: "Send a campaign to its leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		env, err := initEnv(ctx, "campaign")
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := campaign.Launch(ctx, env.Leads, initSender(), currentUser(), args[0], senderProfile())
		if err != nil {
			return err
		}
		zap.L().Info("campaign: sent",
			zap.String("campaign_id", args[0]),
			zap.Int("delivered", len(out.Receipts)),
			zap.Int("failed", len(out.Failures)),
		)
		return printJSON(out)
	},
}

func init() {
	f := campaignCreateCmd.Flags()
	f.StringVar(&campaignDraft.Name, "name", "", "campaign name")
	f.StringVar(&campaignDraft.Subject, "subject", "", "email subject (default: the name)")
	f.StringVar(&campaignDraft.Template, "template", "", "HTML template")
	f.StringVar(&campaignTemplateFile, "template-file", "", "read the HTML template from a file")
	f.StringSliceVar(&campaignDraft.LeadIDs, "lead", nil, "lead id (repeatable)")
	f.StringVar(&campaignGroup, "group", "", "add every lead of this group")

	campaignCmd.AddCommand(campaignCreateCmd, campaignListCmd, campaignShowCmd, campaignStatusCmd, campaignSendCmd)
	rootCmd.AddCommand(campaignCmd)
}

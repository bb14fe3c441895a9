package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadforge-cli/internal/leads"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage lead groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.ListGroups(ctx, user)
		})
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.CreateGroup(ctx, user, args[0])
		})
	},
}

var groupsShowCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "List the leads in a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.GroupLeads(ctx, user, args[0])
		})
	},
}

var groupsAddCmd = &cobra.Command{
	Use:   "add <group-id> <lead-id>",
	Short: "Add a lead to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.AddToGroup(ctx, user, args[0], args[1])
		})
	},
}

var groupsRemoveCmd = &cobra.Command{
	Use:   "remove <group-id> <lead-id>",
	Short: "Remove a lead from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return svc.RemoveFromGroup(ctx, user, args[0], args[1])
		})
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a group; its leads are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLeads(cmd, func(ctx context.Context, svc *leads.Service, user string) (any, error) {
			return nil, svc.DeleteGroup(ctx, user, args[0])
		})
	},
}

func init() {
	groupsCmd.AddCommand(groupsListCmd, groupsCreateCmd, groupsShowCmd, groupsAddCmd, groupsRemoveCmd, groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

package main

import (
	"fmt"

	"github.com/alfredjeanlab/orgwidget/internal/client"
	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	Short:   "Manage organizations",
	GroupID: "directory",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		org, err := admin.CreateOrganization(cmd.Context(), &client.CreateOrganizationRequest{
			Name:   args[0],
			Status: model.OrganizationStatus(status),
		})
		if err != nil {
			return fmt.Errorf("creating organization: %w", err)
		}
		return printResult(org, organizationTable(org))
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List organizations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orgs, err := admin.ListOrganizations(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing organizations: %w", err)
		}
		return printResult(orgs, organizationTable(orgs...))
	},
}

var orgStatusCmd = &cobra.Command{
	Use:   "status <id> <active|on-hold|inactive>",
	Short: "Change an organization's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := model.OrganizationStatus(args[1])
		if !status.IsValid() {
			return fmt.Errorf("invalid status %q (want active, on-hold or inactive)", args[1])
		}
		org, err := admin.UpdateOrganizationStatus(cmd.Context(), args[0], status)
		if err != nil {
			return fmt.Errorf("updating organization %s: %w", args[0], err)
		}
		return printResult(org, organizationTable(org))
	},
}

var costCenterCmd = &cobra.Command{
	Use:     "costcenter",
	Aliases: []string{"cc"},
	Short:   "Manage an organization's cost centers",
	GroupID: "directory",
}

var costCenterCreateCmd = &cobra.Command{
	Use:   "create <organization-id> <name>",
	Short: "Create a cost center",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cc, err := admin.CreateCostCenter(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("creating cost center: %w", err)
		}
		return printResult(cc, costCenterTable(cc))
	},
}

var costCenterListCmd = &cobra.Command{
	Use:   "list <organization-id>",
	Short: "List an organization's cost centers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ccs, err := admin.ListCostCenters(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("listing cost centers: %w", err)
		}
		return printResult(ccs, costCenterTable(ccs...))
	},
}

var userCmd = &cobra.Command{
	Use:     "user",
	Short:   "Bind shoppers to organizations",
	GroupID: "directory",
}

var userSetCmd = &cobra.Command{
	Use:   "set <email>",
	Short: "Bind a shopper email to an organization, cost center and role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		org, _ := cmd.Flags().GetString("org")
		cc, _ := cmd.Flags().GetString("cost-center")
		role, _ := cmd.Flags().GetString("role")
		u, err := admin.SetUser(cmd.Context(), &client.SetUserRequest{
			Email:          args[0],
			Name:           name,
			OrganizationID: org,
			CostCenterID:   cc,
			RoleID:         role,
		})
		if err != nil {
			return fmt.Errorf("setting user %s: %w", args[0], err)
		}
		return printResult(u, userTable(u))
	},
}

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Short:   "List roles",
	GroupID: "directory",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := admin.ListRoles(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing roles: %w", err)
		}
		return printResult(roles, roleTable(roles))
	},
}

func init() {
	orgCreateCmd.Flags().String("status", string(model.OrganizationActive), "initial status")
	orgCmd.AddCommand(orgCreateCmd, orgListCmd, orgStatusCmd)

	costCenterCmd.AddCommand(costCenterCreateCmd, costCenterListCmd)

	userSetCmd.Flags().String("name", "", "display name")
	userSetCmd.Flags().String("org", "", "organization ID")
	userSetCmd.Flags().String("cost-center", "", "cost center ID")
	userSetCmd.Flags().String("role", model.RoleCustomerBuyer, "role ID")
	_ = userSetCmd.MarkFlagRequired("org")
	_ = userSetCmd.MarkFlagRequired("cost-center")
	userCmd.AddCommand(userSetCmd)
}

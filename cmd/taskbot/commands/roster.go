package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avoronova/qc-taskbot/pkg/core/roster"
)

// RosterCmd creates the roster command with users/admins/skills subcommands
// for reconciling local rosters against the spreadsheet.
func RosterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Reconcile local rosters against the spreadsheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "Reconcile the auditor roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.SheetsClient.FetchUserRows()
			if err != nil {
				return fmt.Errorf("failed to fetch user roster: %w", err)
			}
			return roster.ReconcileUsers(app.Ctx, app.Database, app.Logger, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "admins",
		Short: "Reconcile the admin roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.SheetsClient.FetchAdminRows()
			if err != nil {
				return fmt.Errorf("failed to fetch admin roster: %w", err)
			}
			return roster.ReconcileAdmins(app.Ctx, app.Database, app.Logger, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "skills",
		Short: "Patch auditor skills from the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.SheetsClient.FetchUserRows()
			if err != nil {
				return fmt.Errorf("failed to fetch user roster: %w", err)
			}
			return roster.PatchSkills(app.Ctx, app.Database, app.Logger, rows)
		},
	})

	return cmd
}

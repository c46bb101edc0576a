package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResyncCmd creates the resync command: a one-shot backlog reload from the
// spreadsheet.
func ResyncCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Reload the task backlog from the spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Syncer.Resync(app.Ctx); err != nil {
				return fmt.Errorf("resync failed: %w", err)
			}
			fmt.Println("Backlog resynced")
			return nil
		},
	}
}

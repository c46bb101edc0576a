package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avoronova/qc-taskbot/pkg/core/roster"
)

// DumpCmd creates the dump command: export the stored auditor roster as CSV.
func DumpCmd(app *AppContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export the stored auditor roster as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := roster.DumpUsersCSV(app.Ctx, app.Database)
			if err != nil {
				return fmt.Errorf("failed to dump users: %w", err)
			}

			if output == "" {
				fmt.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("Roster written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write CSV to a file instead of stdout")
	return cmd
}

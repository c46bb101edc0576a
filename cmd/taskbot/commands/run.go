package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/bot"
)

// RunCmd creates the run command: the long-lived bot process with the
// scheduled backlog resync.
func RunCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot with the scheduled backlog resync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := bot.New(app.Cfg, app.Database, app.SheetsClient,
				app.Syncer, app.Logger, app.LogPath)
			if err != nil {
				return fmt.Errorf("failed to build bot: %w", err)
			}

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				if err := app.Syncer.RunSchedule(ctx, app.Cfg.ResyncRule); err != nil && ctx.Err() == nil {
					app.Logger.Error("Resync schedule stopped", zap.Error(err))
				}
			}()

			go func() {
				<-ctx.Done()
				app.Logger.Info("Shutting down")
				b.Stop()
			}()

			b.Start()
			return nil
		},
	}
}

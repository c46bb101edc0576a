package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/internal/config"
	"github.com/avoronova/qc-taskbot/pkg/clients/sheetsclient"
	"github.com/avoronova/qc-taskbot/pkg/core/ingest"
	"github.com/avoronova/qc-taskbot/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	Database     db.Database
	Syncer       *ingest.Syncer
	Logger       *zap.Logger
	LogPath      string
	Ctx          context.Context
}

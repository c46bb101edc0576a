package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/avoronova/qc-taskbot/internal/config"
	"github.com/avoronova/qc-taskbot/pkg/clients/sheetsclient"
	"github.com/avoronova/qc-taskbot/pkg/core/conversation"
	"github.com/avoronova/qc-taskbot/pkg/core/ingest"
	"github.com/avoronova/qc-taskbot/pkg/db"
)

// pending admin input modes
const pendingPriorityLogins = "priority_logins"

// Bot wires the Telegram transport to the core services
type Bot struct {
	tb       *tele.Bot
	cfg      *config.Config
	database db.Database
	sheets   *sheetsclient.Client
	sessions *conversation.Sessions
	machine  *conversation.Machine
	syncer   *ingest.Syncer
	logger   *zap.Logger
	loc      *Localizer
	logPath  string

	changeBtn tele.Btn

	// ephemeral admin input modes, keyed by admin id
	adminMu      sync.Mutex
	adminPending map[int64]string
}

// New creates the bot and registers all handlers
func New(cfg *config.Config, database db.Database, sheets *sheetsclient.Client,
	syncer *ingest.Syncer, logger *zap.Logger, logPath string) (*Bot, error) {

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	sessions := conversation.NewSessions(database)
	b := &Bot{
		tb:           tb,
		cfg:          cfg,
		database:     database,
		sheets:       sheets,
		sessions:     sessions,
		machine:      conversation.NewMachine(sessions, sheets, logger),
		syncer:       syncer,
		logger:       logger,
		loc:          NewLocalizer(cfg.Language),
		logPath:      logPath,
		adminPending: make(map[int64]string),
	}

	markup := &tele.ReplyMarkup{}
	b.changeBtn = markup.Data(b.loc.Button("change"), cbChange)

	tb.Handle("/start", b.onStart)
	tb.Handle(tele.OnText, b.onText)
	tb.Handle(&b.changeBtn, b.onChange)

	return b, nil
}

// Start runs the long poller until Stop is called
func (b *Bot) Start() {
	b.logger.Info("Bot polling started")
	b.tb.Start()
}

// Stop stops the long poller
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) isAdmin(ctx context.Context, id int64) (bool, error) {
	for _, su := range b.cfg.Superusers {
		if su == id {
			return true, nil
		}
	}
	_, ok, err := b.database.AdminLogin(ctx, id)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (b *Bot) setPending(id int64, mode string) {
	b.adminMu.Lock()
	defer b.adminMu.Unlock()
	if mode == "" {
		delete(b.adminPending, id)
		return
	}
	b.adminPending[id] = mode
}

func (b *Bot) pending(id int64) string {
	b.adminMu.Lock()
	defer b.adminMu.Unlock()
	return b.adminPending[id]
}

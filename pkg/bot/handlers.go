package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/avoronova/qc-taskbot/pkg/core/conversation"
	"github.com/avoronova/qc-taskbot/pkg/core/distributor"
	"github.com/avoronova/qc-taskbot/pkg/core/ingest"
	"github.com/avoronova/qc-taskbot/pkg/core/roster"
)

func (b *Bot) onStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	b.logger.Info("The /start command",
		zap.Int64("id", sender.ID), zap.String("username", sender.Username))

	admin, err := b.isAdmin(ctx, sender.ID)
	if err != nil {
		b.logger.Error("Admin lookup failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	if admin {
		return c.Send(fmt.Sprintf("%s, %s", b.loc.Message("hello"), sender.FirstName), b.adminMenu())
	}

	_, known, err := b.database.UserLogin(ctx, sender.ID)
	if err != nil {
		b.logger.Error("User lookup failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	if known {
		return c.Send(fmt.Sprintf("%s, %s", b.loc.Message("hello"), sender.FirstName), b.userMenu())
	}

	// Strangers get no reaction at all.
	return nil
}

func (b *Bot) onText(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	text := c.Text()

	if mode := b.pending(userID); mode == pendingPriorityLogins {
		b.setPending(userID, "")
		return b.handlePriorityLogins(ctx, c, text)
	}

	switch text {
	case b.loc.Button("get_task"):
		return b.handleGetTask(ctx, c)
	case b.loc.Button("cancel"):
		return b.handleCancel(ctx, c)
	case b.loc.Button("update_users"),
		b.loc.Button("update_admins"),
		b.loc.Button("update_skills"),
		b.loc.Button("list_users"),
		b.loc.Button("priority"),
		b.loc.Button("unload"),
		b.loc.Button("logs"):
		return b.handleAdminButton(ctx, c, text)
	}

	return b.handleConversation(ctx, c, text)
}

func (b *Bot) handleGetTask(ctx context.Context, c tele.Context) error {
	res, err := distributor.RequestTask(ctx, b.database, b.database, b.sessions,
		b.logger, c.Sender().ID, c.Chat().ID, time.Now())
	if err != nil {
		b.logger.Error("Task request failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}

	switch res.Outcome {
	case distributor.OutcomeNoSuchUser:
		return nil
	case distributor.OutcomeNoSkills:
		return c.Send(b.loc.Message("no_skill"))
	case distributor.OutcomeNoTask:
		return c.Send(fmt.Sprintf(b.loc.Message("no_task"), res.Skill))
	}

	if err := c.Send(taskCard(res.Task)); err != nil {
		return err
	}
	return c.Send(b.loc.Message("count_tickets"))
}

func (b *Bot) handleConversation(ctx context.Context, c tele.Context, text string) error {
	event, err := b.machine.HandleMessage(ctx, c.Sender().ID, c.Chat().ID, text, time.Now())
	if err != nil {
		b.logger.Error("Conversation failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}

	switch event {
	case conversation.EventReprompt:
		return c.Send(b.loc.Message("error_int"))
	case conversation.EventCountRecorded:
		return c.Send(b.loc.Message("count_rec"), b.changeMenu())
	case conversation.EventCommentPrompt:
		return c.Send(b.loc.Message("comment"), b.commentMenu())
	case conversation.EventCommentRecorded:
		return c.Send(b.loc.Message("comment_rec"), b.userMenu())
	case conversation.EventCorrectionSaved:
		return c.Send(b.loc.Message("success_change"), b.userMenu())
	case conversation.EventCorrectionNotFound:
		return c.Send(b.loc.Message("info_empty_entry"), b.userMenu())
	}

	return nil
}

func (b *Bot) handleCancel(ctx context.Context, c tele.Context) error {
	state, err := b.sessions.State(ctx, c.Sender().ID)
	if err != nil {
		b.logger.Error("State lookup failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	if state != conversation.StateAwaitingCorrection {
		return nil
	}
	if err := b.machine.CancelCorrection(ctx, c.Sender().ID); err != nil {
		b.logger.Error("Correction cancel failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	return c.Send(b.loc.Message("reset_change"), b.userMenu())
}

// onChange starts the correction flow from the inline button on a recorded
// submission.
func (b *Bot) onChange(c tele.Context) error {
	ctx := context.Background()
	if err := c.Respond(); err != nil {
		return err
	}

	err := b.machine.StartCorrection(ctx, c.Sender().ID, c.Chat().ID, time.Now())
	if errors.Is(err, conversation.ErrStaleSubmission) {
		return c.Send(b.loc.Message("info_old_task"))
	}
	if errors.Is(err, conversation.ErrNoSubmission) {
		return c.Send(b.loc.Message("info_empty_entry"))
	}
	if err != nil {
		b.logger.Error("Correction start failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}

	return c.Send(b.loc.Message("change_count"), b.cancelMenu())
}

func (b *Bot) handleAdminButton(ctx context.Context, c tele.Context, text string) error {
	admin, err := b.isAdmin(ctx, c.Sender().ID)
	if err != nil {
		b.logger.Error("Admin lookup failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	if !admin {
		return nil
	}

	switch text {
	case b.loc.Button("update_users"):
		rows, err := b.sheets.FetchUserRows()
		if err == nil {
			err = roster.ReconcileUsers(ctx, b.database, b.logger, rows)
		}
		return b.adminOutcome(c, err, "update_db")

	case b.loc.Button("update_admins"):
		rows, err := b.sheets.FetchAdminRows()
		if err == nil {
			err = roster.ReconcileAdmins(ctx, b.database, b.logger, rows)
		}
		return b.adminOutcome(c, err, "update_db_root")

	case b.loc.Button("update_skills"):
		rows, err := b.sheets.FetchUserRows()
		if err == nil {
			err = roster.PatchSkills(ctx, b.database, b.logger, rows)
		}
		return b.adminOutcome(c, err, "update_skills")

	case b.loc.Button("list_users"):
		data, err := roster.DumpUsersCSV(ctx, b.database)
		if err != nil {
			b.logger.Error("User dump failed", zap.Error(err))
			return c.Send(b.loc.Message("info_error_entry"))
		}
		doc := &tele.Document{
			File:     tele.FromReader(bytes.NewReader(data)),
			FileName: "auditors.csv",
		}
		return c.Send(doc)

	case b.loc.Button("priority"):
		b.setPending(c.Sender().ID, pendingPriorityLogins)
		return c.Send(b.loc.Message("send_login"))

	case b.loc.Button("unload"):
		if err := c.Send(b.loc.Message("unloading_wait")); err != nil {
			return err
		}
		err := b.syncer.Resync(ctx)
		if errors.Is(err, ingest.ErrResyncInFlight) {
			return c.Send(b.loc.Message("unloading_busy"))
		}
		return b.adminOutcome(c, err, "success_unloading")

	case b.loc.Button("logs"):
		f, err := os.Open(b.logPath)
		if err != nil {
			b.logger.Error("Log export failed", zap.Error(err))
			return c.Send(b.loc.Message("info_error_entry"))
		}
		defer f.Close()
		doc := &tele.Document{File: tele.FromReader(f), FileName: "taskbot.log"}
		return c.Send(doc)
	}

	return nil
}

func (b *Bot) handlePriorityLogins(ctx context.Context, c tele.Context, text string) error {
	var logins []string
	for _, line := range strings.Split(text, "\n") {
		if login := strings.TrimSpace(line); login != "" {
			logins = append(logins, login)
		}
	}

	report, err := b.database.SetPriority(ctx, logins)
	if err != nil {
		b.logger.Error("Priority update failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	return c.Send(fmt.Sprintf("%s\n%s", b.loc.Message("result_prior"), report))
}

func (b *Bot) adminOutcome(c tele.Context, err error, successKey string) error {
	if err != nil {
		b.logger.Error("Admin operation failed", zap.Error(err))
		return c.Send(b.loc.Message("info_error_entry"))
	}
	return c.Send(b.loc.Message(successKey))
}

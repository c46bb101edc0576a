package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/clients/sheetsclient"
)

// Recorder emits finalized assessment records to the external spreadsheet
type Recorder interface {
	AppendResult(supportLogin, date, auditorLogin string, auditorID int64,
		viewed, elapsedSeconds int, comment string) error
	CorrectViewedCount(supportLogin string, auditorID int64, viewed int) error
}

// Event is the machine's answer to one inbound message; the transport maps
// it to a localized reply.
type Event int

const (
	// EventNone: no active conversation, the message is not ours.
	EventNone Event = iota
	// EventReprompt: input was not an integer, ask again, state unchanged.
	EventReprompt
	// EventCountRecorded: a positive count was recorded and emitted.
	EventCountRecorded
	// EventCommentPrompt: a zero count needs an explaining comment.
	EventCommentPrompt
	// EventCommentRecorded: the comment was recorded and emitted.
	EventCommentRecorded
	// EventCorrectionSaved: the correction overwrote the sheet cell.
	EventCorrectionSaved
	// EventCorrectionNotFound: no matching result row for the caller.
	EventCorrectionNotFound
)

// HandleMessage advances the conversation for one inbound text message.
// Idle users produce EventNone so the transport can fall through to other
// handlers.
func (m *Machine) HandleMessage(ctx context.Context, user, chat int64, text string, now time.Time) (Event, error) {
	state, err := m.sessions.State(ctx, user)
	if err != nil {
		return EventNone, fmt.Errorf("failed to read conversation state: %w", err)
	}

	switch state {
	case StateAwaitingCount:
		return m.handleCount(ctx, user, chat, text, now)
	case StateAwaitingComment:
		return m.handleComment(ctx, user, chat, text, now)
	case StateAwaitingCorrection:
		return m.handleCorrection(ctx, user, text)
	default:
		return EventNone, nil
	}
}

// Machine drives the assigned → awaiting count → (awaiting comment) →
// recorded flow and the separate correction flow. All state lives in the
// durable session store, so conversations survive restarts.
type Machine struct {
	sessions *Sessions
	recorder Recorder
	logger   *zap.Logger
}

// NewMachine creates a conversation machine
func NewMachine(sessions *Sessions, recorder Recorder, logger *zap.Logger) *Machine {
	return &Machine{sessions: sessions, recorder: recorder, logger: logger}
}

func (m *Machine) handleCount(ctx context.Context, user, chat int64, text string, now time.Time) (Event, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 0 {
		return EventReprompt, nil
	}

	sess, ok, err := m.sessions.Load(ctx, user)
	if err != nil {
		return EventNone, err
	}
	if !ok {
		// State row without a payload should not happen; recover to idle.
		m.logger.Warn("Conversation state without session payload", zap.Int64("user", user))
		return EventNone, m.sessions.Clear(ctx, user)
	}

	if count == 0 {
		// A zero-ticket outcome needs an explanation before it is recorded.
		if err := m.sessions.SetState(ctx, user, chat, StateAwaitingComment); err != nil {
			return EventNone, fmt.Errorf("failed to await comment: %w", err)
		}
		return EventCommentPrompt, nil
	}

	sess.Viewed = count
	if err := m.finalize(ctx, user, chat, sess, now); err != nil {
		return EventNone, err
	}
	return EventCountRecorded, nil
}

func (m *Machine) handleComment(ctx context.Context, user, chat int64, text string, now time.Time) (Event, error) {
	sess, ok, err := m.sessions.Load(ctx, user)
	if err != nil {
		return EventNone, err
	}
	if !ok {
		m.logger.Warn("Conversation state without session payload", zap.Int64("user", user))
		return EventNone, m.sessions.Clear(ctx, user)
	}

	sess.Viewed = 0
	sess.Comment = text
	if err := m.finalize(ctx, user, chat, sess, now); err != nil {
		return EventNone, err
	}
	return EventCommentRecorded, nil
}

// finalize emits the record and drops the conversation back to idle, keeping
// the payload so the submission can still be corrected the same day.
func (m *Machine) finalize(ctx context.Context, user, chat int64, sess *Session, now time.Time) error {
	elapsed := int(now.Sub(sess.StartedAt).Seconds())
	if err := m.recorder.AppendResult(sess.SupportLogin, sess.Date, sess.AuditorLogin,
		sess.AuditorID, sess.Viewed, elapsed, sess.Comment); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}

	if err := m.sessions.Save(ctx, user, chat, sess); err != nil {
		return err
	}
	if err := m.sessions.ClearState(ctx, user); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	m.logger.Info("Assessment recorded",
		zap.String("support", sess.SupportLogin),
		zap.String("auditor", sess.AuditorLogin),
		zap.Int("viewed", sess.Viewed))
	return nil
}

// ErrStaleSubmission reports a correction attempt on a submission from a
// previous calendar day.
var ErrStaleSubmission = errors.New("submission is not from today")

// ErrNoSubmission reports a correction attempt with nothing to correct.
var ErrNoSubmission = errors.New("no recorded submission")

// StartCorrection opens the correction flow for the caller's last recorded
// submission. Corrections are scoped to the same local calendar day as the
// assignment.
func (m *Machine) StartCorrection(ctx context.Context, user, chat int64, now time.Time) error {
	sess, ok, err := m.sessions.Load(ctx, user)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSubmission
	}
	if sess.Date != now.Format(DateLayout) {
		return ErrStaleSubmission
	}

	if err := m.sessions.SetState(ctx, user, chat, StateAwaitingCorrection); err != nil {
		return fmt.Errorf("failed to start correction: %w", err)
	}
	return nil
}

// CancelCorrection discards a pending correction with no external effect.
func (m *Machine) CancelCorrection(ctx context.Context, user int64) error {
	if err := m.sessions.ClearState(ctx, user); err != nil {
		return fmt.Errorf("failed to cancel correction: %w", err)
	}
	return nil
}

func (m *Machine) handleCorrection(ctx context.Context, user int64, text string) (Event, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count < 0 {
		return EventReprompt, nil
	}

	sess, ok, err := m.sessions.Load(ctx, user)
	if err != nil {
		return EventNone, err
	}
	if !ok {
		m.logger.Warn("Correction state without session payload", zap.Int64("user", user))
		return EventNone, m.sessions.Clear(ctx, user)
	}

	if err := m.sessions.ClearState(ctx, user); err != nil {
		return EventNone, fmt.Errorf("failed to reset conversation: %w", err)
	}

	err = m.recorder.CorrectViewedCount(sess.SupportLogin, sess.AuditorID, count)
	if errors.Is(err, sheetsclient.ErrEntryNotFound) {
		return EventCorrectionNotFound, nil
	}
	if err != nil {
		return EventNone, fmt.Errorf("failed to correct result: %w", err)
	}

	m.logger.Info("Submission corrected",
		zap.String("support", sess.SupportLogin), zap.Int("viewed", count))
	return EventCorrectionSaved, nil
}

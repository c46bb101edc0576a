package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// Conversation states. Idle has no stored state row.
const (
	StateAwaitingCount      = "awaiting_count"
	StateAwaitingComment    = "awaiting_comment"
	StateAwaitingCorrection = "awaiting_correction"
)

// DateLayout is the assignment date form used in sessions and result rows.
const DateLayout = "02.01.2006"

// Session is the per-auditor conversation payload. It is created when a task
// is claimed and kept after completion so a same-day correction can find the
// last submission.
type Session struct {
	SupportLogin string    `json:"support_login"`
	Date         string    `json:"date"`
	AuditorLogin string    `json:"auditor_login"`
	AuditorID    int64     `json:"auditor_id"`
	Viewed       int       `json:"viewed"`
	StartedAt    time.Time `json:"started_at"`
	Comment      string    `json:"comment"`
}

// Sessions wraps the durable session store with JSON payload encoding.
type Sessions struct {
	store db.SessionStore
}

// NewSessions creates a session accessor over the durable store
func NewSessions(store db.SessionStore) *Sessions {
	return &Sessions{store: store}
}

// State returns the current conversation state, "" meaning idle.
func (s *Sessions) State(ctx context.Context, user int64) (string, error) {
	return s.store.State(ctx, user)
}

// SetState transitions the stored conversation state.
func (s *Sessions) SetState(ctx context.Context, user, chat int64, state string) error {
	return s.store.SetState(ctx, user, chat, state)
}

// ClearState drops the conversation back to idle, keeping the payload around
// for same-day corrections.
func (s *Sessions) ClearState(ctx context.Context, user int64) error {
	return s.store.ClearState(ctx, user)
}

// Load reads and decodes the session payload; the bool reports presence.
func (s *Sessions) Load(ctx context.Context, user int64) (*Session, bool, error) {
	payload, ok, err := s.store.Data(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, true, nil
}

// Save encodes and stores the session payload.
func (s *Sessions) Save(ctx context.Context, user, chat int64, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.SetData(ctx, user, chat, payload); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear removes both the state and the payload.
func (s *Sessions) Clear(ctx context.Context, user int64) error {
	return s.store.ClearSession(ctx, user)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Conversation sessions persist across restarts: state and serialized payload
// live in two keyed tables mirroring the transport's user/chat addressing.

// State returns the stored conversation state for a user, or "" when no
// session exists.
func (d *DB) State(ctx context.Context, user int64) (string, error) {
	var state string
	err := d.pool.QueryRow(ctx, `
		SELECT state FROM session_state WHERE "user" = $1
	`, user).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query session state: %w", err)
	}
	return state, nil
}

// SetState upserts the conversation state for a user.
func (d *DB) SetState(ctx context.Context, user, chat int64, state string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO session_state ("user", chat, state) VALUES ($1, $2, $3)
		ON CONFLICT ("user") DO UPDATE SET chat = $2, state = $3
	`, user, chat, state)
	if err != nil {
		return fmt.Errorf("failed to set session state: %w", err)
	}
	return nil
}

// ClearState removes only the state row, dropping the conversation back to
// idle while keeping the payload for same-day corrections.
func (d *DB) ClearState(ctx context.Context, user int64) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM session_state WHERE "user" = $1`, user)
	if err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}

// Data returns the serialized session payload for a user; the bool reports
// presence.
func (d *DB) Data(ctx context.Context, user int64) ([]byte, bool, error) {
	var payload []byte
	err := d.pool.QueryRow(ctx, `
		SELECT data FROM session_data WHERE "user" = $1
	`, user).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query session data: %w", err)
	}
	return payload, true, nil
}

// SetData upserts the serialized session payload for a user.
func (d *DB) SetData(ctx context.Context, user, chat int64, payload []byte) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO session_data ("user", chat, data) VALUES ($1, $2, $3)
		ON CONFLICT ("user") DO UPDATE SET chat = $2, data = $3
	`, user, chat, payload)
	if err != nil {
		return fmt.Errorf("failed to set session data: %w", err)
	}
	return nil
}

// ClearSession removes both the state and payload rows for a user.
func (d *DB) ClearSession(ctx context.Context, user int64) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin session clear: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM session_state WHERE "user" = $1`, user); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM session_data WHERE "user" = $1`, user); err != nil {
		return fmt.Errorf("failed to clear session data: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session clear: %w", err)
	}
	return nil
}

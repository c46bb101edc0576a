package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// ClaimNextTask selects the best open task for a skill and removes it from
// the backlog in the same transaction, so a task can never be handed to two
// requesters. Ordering is priority first, then residue, then login to keep
// ties deterministic. Returns nil when nothing matches.
func (d *DB) ClaimNextTask(ctx context.Context, skill string) (*db.Task, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var t db.Task
	err = tx.QueryRow(ctx, `
		SELECT status, date, login, link, comment, skillsup, skill, output,
		       appreciated, autochecks, residue, priority
		FROM task
		WHERE skill = $1
		ORDER BY priority DESC, residue DESC, login ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, skill).Scan(&t.Status, &t.Date, &t.Login, &t.Link, &t.Comment, &t.SkillSup,
		&t.Skill, &t.Output, &t.Appreciated, &t.Autochecks, &t.Residue, &t.Priority)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select task for skill %q: %w", skill, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM task WHERE login = $1`, t.Login); err != nil {
		return nil, fmt.Errorf("failed to remove claimed task %s: %w", t.Login, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return &t, nil
}

// ReplaceTaskBatch swaps the whole backlog for the given rows in one
// transaction. The table holds the current open backlog only, so nothing from
// the previous batch survives. Duplicate support logins inside the batch keep
// the first occurrence; later ones are logged and skipped.
func (d *DB) ReplaceTaskBatch(ctx context.Context, tasks []db.Task) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM task`); err != nil {
		return fmt.Errorf("failed to clear task table: %w", err)
	}

	inserted := 0
	for _, t := range tasks {
		tag, err := tx.Exec(ctx, `
			INSERT INTO task (status, date, login, link, comment, skillsup, skill,
			                  output, appreciated, autochecks, residue, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (login) DO NOTHING
		`, t.Status, t.Date, t.Login, t.Link, t.Comment, t.SkillSup, t.Skill,
			t.Output, t.Appreciated, t.Autochecks, t.Residue, t.Priority)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.Login, err)
		}
		if tag.RowsAffected() == 0 {
			d.logger.Warn("Skipped duplicate task in batch", zap.String("login", t.Login))
			continue
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch replace: %w", err)
	}
	d.logger.Info("Replaced task backlog",
		zap.Int("inserted", inserted), zap.Int("received", len(tasks)))
	return nil
}

// SetPriority raises priority to 1 for each login and reads the row back,
// building a per-login status report inside the same transaction so the
// caller does not need a second query.
func (d *DB) SetPriority(ctx context.Context, logins []string) (string, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin priority update: %w", err)
	}
	defer tx.Rollback(ctx)

	var report strings.Builder
	for _, login := range logins {
		if _, err := tx.Exec(ctx, `
			UPDATE task SET priority = 1 WHERE login = $1
		`, login); err != nil {
			return "", fmt.Errorf("failed to set priority for %s: %w", login, err)
		}

		var flagged bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM task WHERE login = $1 AND priority = 1)
		`, login).Scan(&flagged)
		if err != nil {
			return "", fmt.Errorf("failed to read back priority for %s: %w", login, err)
		}

		if flagged {
			fmt.Fprintf(&report, "%s ✅\n", login)
		} else {
			fmt.Fprintf(&report, "%s ❌\n", login)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit priority update: %w", err)
	}
	return strings.TrimRight(report.String(), "\n"), nil
}

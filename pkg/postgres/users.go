package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// UserLogin looks up an auditor login by telegram id. A missing row is not an
// error: the bool reports presence.
func (d *DB) UserLogin(ctx context.Context, id int64) (string, bool, error) {
	var login string
	err := d.pool.QueryRow(ctx, `SELECT login FROM qc_user WHERE id = $1`, id).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query user login: %w", err)
	}
	return login, true, nil
}

// RotateSkill reads the requester's skill list and rotation counter, advances
// the counter (wrapping at the end of the list), persists it and returns the
// skill the old counter pointed at. The read-modify-write runs in one
// transaction with the row locked, so two simultaneous requests never lose an
// increment.
func (d *DB) RotateSkill(ctx context.Context, id int64) (string, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin rotation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var user db.User
	err = tx.QueryRow(ctx, `
		SELECT login, id, skill, num FROM qc_user WHERE id = $1 FOR UPDATE
	`, id).Scan(&user.Login, &user.ID, &user.Skill, &user.Num)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", db.ErrNoUser
	}
	if err != nil {
		return "", fmt.Errorf("failed to read user for rotation: %w", err)
	}

	skills := user.SkillList()
	if len(skills) == 0 {
		return "", db.ErrNoSkills
	}

	// A stale counter can point past the end after a skill-patch shrank the
	// list; clamp before using it.
	current := user.Num
	if current >= len(skills) {
		current = 0
	}
	next := current + 1
	if next >= len(skills) {
		next = 0
	}

	if _, err := tx.Exec(ctx, `UPDATE qc_user SET num = $2 WHERE id = $1`, id, next); err != nil {
		return "", fmt.Errorf("failed to persist rotation counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit rotation: %w", err)
	}

	return skills[current], nil
}

// ReconcileUsers converges the stored user roster on the desired list inside
// one transaction. Rows are matched by full (login, id, skill) tuple identity:
// anything stored but not desired is deleted, anything desired but not stored
// is inserted with a zero rotation counter. No update-in-place.
func (d *DB) ReconcileUsers(ctx context.Context, desired []db.User) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin user reconciliation: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT login, id, skill, num FROM qc_user`)
	if err != nil {
		return fmt.Errorf("failed to query stored users: %w", err)
	}
	var stored []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.Login, &u.ID, &u.Skill, &u.Num); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan user: %w", err)
		}
		stored = append(stored, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating users: %w", err)
	}

	type identity struct {
		login string
		id    int64
		skill string
	}
	desiredSet := make(map[identity]bool, len(desired))
	for _, u := range desired {
		desiredSet[identity{u.Login, u.ID, u.Skill}] = true
	}
	storedSet := make(map[identity]bool, len(stored))
	for _, u := range stored {
		storedSet[identity{u.Login, u.ID, u.Skill}] = true
	}

	for _, u := range stored {
		if desiredSet[identity{u.Login, u.ID, u.Skill}] {
			continue
		}
		if _, err := tx.Exec(ctx, `DELETE FROM qc_user WHERE id = $1`, u.ID); err != nil {
			return fmt.Errorf("failed to delete user %s: %w", u.Login, err)
		}
		d.logger.Info("Removed user during reconciliation",
			zap.String("login", u.Login), zap.Int64("id", u.ID))
	}

	for _, u := range desired {
		if storedSet[identity{u.Login, u.ID, u.Skill}] {
			continue
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO qc_user (login, id, skill, num)
			VALUES ($1, $2, $3, 0)
			ON CONFLICT (id) DO NOTHING
		`, u.Login, u.ID, u.Skill)
		if err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.Login, err)
		}
		if tag.RowsAffected() == 0 {
			d.logger.Warn("Skipped duplicate user during reconciliation",
				zap.String("login", u.Login), zap.Int64("id", u.ID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user reconciliation: %w", err)
	}
	return nil
}

// PatchSkills updates the skill column for every entry whose stored row does
// not already match the incoming (login, id, skill) tuple exactly. The
// rotation counter is left alone.
func (d *DB) PatchSkills(ctx context.Context, updates []db.User) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin skill patch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		var matched bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM qc_user WHERE login = $1 AND id = $2 AND skill = $3
			)
		`, u.Login, u.ID, u.Skill).Scan(&matched)
		if err != nil {
			return fmt.Errorf("failed to check skills for %s: %w", u.Login, err)
		}
		if matched {
			continue
		}
		tag, err := tx.Exec(ctx, `UPDATE qc_user SET skill = $2 WHERE id = $1`, u.ID, u.Skill)
		if err != nil {
			return fmt.Errorf("failed to patch skills for %s: %w", u.Login, err)
		}
		if tag.RowsAffected() > 0 {
			d.logger.Info("Patched user skills",
				zap.String("login", u.Login), zap.String("skill", u.Skill))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit skill patch: %w", err)
	}
	return nil
}

// DumpUsers returns the full user roster ordered by login for export.
func (d *DB) DumpUsers(ctx context.Context) ([]db.User, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT login, id, skill, num FROM qc_user ORDER BY login
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.Login, &u.ID, &u.Skill, &u.Num); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

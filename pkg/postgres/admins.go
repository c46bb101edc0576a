package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// AdminLogin looks up an admin login by telegram id. Absence means "not an
// admin", not an error.
func (d *DB) AdminLogin(ctx context.Context, id int64) (string, bool, error) {
	var login string
	err := d.pool.QueryRow(ctx, `SELECT login FROM admin WHERE id = $1`, id).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query admin login: %w", err)
	}
	return login, true, nil
}

// ReconcileAdmins converges the stored admin roster on the desired list,
// same presence-only algorithm as ReconcileUsers on the two-column shape.
func (d *DB) ReconcileAdmins(ctx context.Context, desired []db.Admin) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin admin reconciliation: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT login, id FROM admin`)
	if err != nil {
		return fmt.Errorf("failed to query stored admins: %w", err)
	}
	var stored []db.Admin
	for rows.Next() {
		var a db.Admin
		if err := rows.Scan(&a.Login, &a.ID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan admin: %w", err)
		}
		stored = append(stored, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating admins: %w", err)
	}

	desiredSet := make(map[db.Admin]bool, len(desired))
	for _, a := range desired {
		desiredSet[a] = true
	}
	storedSet := make(map[db.Admin]bool, len(stored))
	for _, a := range stored {
		storedSet[a] = true
	}

	for _, a := range stored {
		if desiredSet[a] {
			continue
		}
		if _, err := tx.Exec(ctx, `DELETE FROM admin WHERE id = $1`, a.ID); err != nil {
			return fmt.Errorf("failed to delete admin %s: %w", a.Login, err)
		}
		d.logger.Info("Removed admin during reconciliation",
			zap.String("login", a.Login), zap.Int64("id", a.ID))
	}

	for _, a := range desired {
		if storedSet[a] {
			continue
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO admin (login, id) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, a.Login, a.ID)
		if err != nil {
			return fmt.Errorf("failed to insert admin %s: %w", a.Login, err)
		}
		if tag.RowsAffected() == 0 {
			d.logger.Warn("Skipped duplicate admin during reconciliation",
				zap.String("login", a.Login), zap.Int64("id", a.ID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit admin reconciliation: %w", err)
	}
	return nil
}

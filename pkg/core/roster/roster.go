package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

var validate = validator.New()

// userRecord is the strict shape an incoming roster row must parse into
type userRecord struct {
	Login string `validate:"required"`
	ID    int64  `validate:"required"`
	Skill string `validate:"required"`
}

// adminRecord is the two-column admin roster shape
type adminRecord struct {
	Login string `validate:"required"`
	ID    int64  `validate:"required"`
}

// ReconcileUsers parses the raw roster rows and converges the stored user
// roster on the valid subset. Rows that fail validation are dropped one by
// one with a warning; they never abort the batch.
func ReconcileUsers(ctx context.Context, store db.RosterStore, logger *zap.Logger, rows [][]string) error {
	desired := parseUsers(logger, rows)
	if err := store.ReconcileUsers(ctx, desired); err != nil {
		return fmt.Errorf("failed to reconcile users: %w", err)
	}
	logger.Info("User roster reconciled", zap.Int("desired", len(desired)))
	return nil
}

// ReconcileAdmins parses the raw admin rows and converges the stored admin
// roster on the valid subset.
func ReconcileAdmins(ctx context.Context, store db.RosterStore, logger *zap.Logger, rows [][]string) error {
	desired := parseAdmins(logger, rows)
	if err := store.ReconcileAdmins(ctx, desired); err != nil {
		return fmt.Errorf("failed to reconcile admins: %w", err)
	}
	logger.Info("Admin roster reconciled", zap.Int("desired", len(desired)))
	return nil
}

// PatchSkills applies skill updates from the raw roster rows. Only the skill
// column changes, and only where it differs from the stored row.
func PatchSkills(ctx context.Context, store db.RosterStore, logger *zap.Logger, rows [][]string) error {
	updates := parseUsers(logger, rows)
	if err := store.PatchSkills(ctx, updates); err != nil {
		return fmt.Errorf("failed to patch skills: %w", err)
	}
	logger.Info("Skills patched", zap.Int("updates", len(updates)))
	return nil
}

// DumpUsersCSV renders the full stored roster as a CSV document for export.
func DumpUsersCSV(ctx context.Context, store db.RosterStore) ([]byte, error) {
	users, err := store.DumpUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dump users: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"login", "id", "skill", "num"})
	for _, u := range users {
		w.Write([]string{u.Login, strconv.FormatInt(u.ID, 10), u.Skill, strconv.Itoa(u.Num)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render user roster: %w", err)
	}
	return buf.Bytes(), nil
}

func parseUsers(logger *zap.Logger, rows [][]string) []db.User {
	users := make([]db.User, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			logger.Warn("Dropped short user row", zap.Int("row", i))
			continue
		}
		id, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			logger.Warn("Dropped user row with bad id",
				zap.String("login", row[0]), zap.String("id", row[1]))
			continue
		}
		rec := userRecord{Login: row[0], ID: id, Skill: row[2]}
		if err := validate.Struct(rec); err != nil {
			logger.Warn("Dropped invalid user row",
				zap.String("login", rec.Login), zap.Error(err))
			continue
		}
		users = append(users, db.User{Login: rec.Login, ID: rec.ID, Skill: rec.Skill})
	}
	return users
}

func parseAdmins(logger *zap.Logger, rows [][]string) []db.Admin {
	admins := make([]db.Admin, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			logger.Warn("Dropped short admin row", zap.Int("row", i))
			continue
		}
		id, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			logger.Warn("Dropped admin row with bad id",
				zap.String("login", row[0]), zap.String("id", row[1]))
			continue
		}
		rec := adminRecord{Login: row[0], ID: id}
		if err := validate.Struct(rec); err != nil {
			logger.Warn("Dropped invalid admin row",
				zap.String("login", rec.Login), zap.Error(err))
			continue
		}
		admins = append(admins, db.Admin{Login: rec.Login, ID: rec.ID})
	}
	return admins
}

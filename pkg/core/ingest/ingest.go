package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// ErrResyncInFlight reports that another resync is already running; manual
// and scheduled triggers share one guard so two batch replacements can never
// race on the delete-then-insert window.
var ErrResyncInFlight = errors.New("backlog resync already in flight")

// BacklogSource pulls pre-filtered raw backlog rows from the spreadsheet
type BacklogSource interface {
	FetchBacklogRows(now time.Time) ([][]string, error)
}

// Syncer validates raw backlog rows and replaces the stored task batch
type Syncer struct {
	source BacklogSource
	store  db.TaskStore
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewSyncer creates a backlog syncer
func NewSyncer(source BacklogSource, store db.TaskStore, logger *zap.Logger) *Syncer {
	return &Syncer{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Resync pulls the backlog from the spreadsheet, validates it row by row and
// replaces the stored batch wholesale. Invalid rows are dropped with a
// warning and never abort the run. Only one resync runs at a time.
func (s *Syncer) Resync(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrResyncInFlight
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("Starting backlog resync")

	now := s.now()
	rows, err := s.source.FetchBacklogRows(now)
	if err != nil {
		return fmt.Errorf("failed to fetch backlog: %w", err)
	}

	tasks := make([]db.Task, 0, len(rows))
	for i, row := range rows {
		task, err := ParseRow(row, now)
		if err != nil {
			login := ""
			if len(row) > 2 {
				login = row[2]
			}
			logger.Warn("Dropped invalid backlog row",
				zap.Int("row", i), zap.String("login", login), zap.Error(err))
			continue
		}
		tasks = append(tasks, *task)
	}

	if err := s.store.ReplaceTaskBatch(ctx, tasks); err != nil {
		return fmt.Errorf("failed to replace task batch: %w", err)
	}

	logger.Info("Backlog resync complete",
		zap.Int("received", len(rows)), zap.Int("loaded", len(tasks)))
	return nil
}

// ParseRow validates one 11-field backlog row and converts it into a task.
// Field order: status, date, login, link, comment, skillsup, skill, output,
// appreciated, autochecks, residue.
func ParseRow(row []string, now time.Time) (*db.Task, error) {
	if len(row) != 11 {
		return nil, fmt.Errorf("expected 11 fields, got %d", len(row))
	}

	status := row[0]
	if status != "" && status != "НЕ ДЕКРЕТ" {
		return nil, fmt.Errorf("incorrect status: %q", status)
	}

	date := row[1]
	if date != "" && date != "-" {
		parsed, err := time.Parse("02.01.2006", date)
		if err != nil {
			return nil, fmt.Errorf("incorrect date: %q", date)
		}
		if !parsed.Before(now) {
			return nil, fmt.Errorf("incorrect date: %q is not in the past", date)
		}
	}

	appreciated := parseLooseInt(row[8])
	autochecks := parseLooseInt(row[9])

	residue, err := strconv.Atoi(row[10])
	if err != nil {
		return nil, fmt.Errorf("incorrect residue: %q", row[10])
	}
	if residue == 0 {
		return nil, fmt.Errorf("incorrect residue: %d", residue)
	}

	return &db.Task{
		Status:      status,
		Date:        date,
		Login:       row[2],
		Link:        row[3],
		Comment:     row[4],
		SkillSup:    row[5],
		Skill:       row[6],
		Output:      row[7],
		Appreciated: appreciated,
		Autochecks:  autochecks,
		Residue:     residue,
	}, nil
}

// parseLooseInt tolerates blank or non-numeric counters, matching the source
// table where these columns are sometimes free text.
func parseLooseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

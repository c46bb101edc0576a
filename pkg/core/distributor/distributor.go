package distributor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/core/conversation"
	"github.com/avoronova/qc-taskbot/pkg/db"
)

// Outcome classifies a task request
type Outcome int

const (
	// OutcomeAssigned: a task was claimed and a conversation opened.
	OutcomeAssigned Outcome = iota
	// OutcomeNoSuchUser: requester has no user row; the caller decides to no-op.
	OutcomeNoSuchUser
	// OutcomeNoSkills: the user row declares no skills.
	OutcomeNoSkills
	// OutcomeNoTask: rotation picked a skill but the backlog had no match.
	OutcomeNoTask
)

// Result carries the request outcome. Skill is set for every outcome past
// the rotation step; Task and Session only when a task was assigned.
type Result struct {
	Outcome Outcome
	Skill   string
	Task    *db.Task
	Session *conversation.Session
}

// RequestTask hands the requester the next task for their rotated skill.
// Rotation always advances, even when no task is found, so repeated requests
// cycle fairly across the requester's skills instead of starving any of
// them. Claiming removes the task from the backlog atomically, so no two
// requesters ever receive the same task.
func RequestTask(ctx context.Context, users db.UserStore, tasks db.TaskStore,
	sessions *conversation.Sessions, logger *zap.Logger,
	userID, chatID int64, now time.Time) (*Result, error) {

	login, ok, err := users.UserLogin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requester: %w", err)
	}
	if !ok {
		return &Result{Outcome: OutcomeNoSuchUser}, nil
	}

	skill, err := users.RotateSkill(ctx, userID)
	if errors.Is(err, db.ErrNoUser) {
		return &Result{Outcome: OutcomeNoSuchUser}, nil
	}
	if errors.Is(err, db.ErrNoSkills) {
		return &Result{Outcome: OutcomeNoSkills}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate skill: %w", err)
	}

	task, err := tasks.ClaimNextTask(ctx, skill)
	if err != nil {
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}
	if task == nil {
		logger.Info("No open task for skill",
			zap.String("skill", skill), zap.String("auditor", login))
		return &Result{Outcome: OutcomeNoTask, Skill: skill}, nil
	}

	sess := &conversation.Session{
		SupportLogin: task.Login,
		Date:         now.Format(conversation.DateLayout),
		AuditorLogin: login,
		AuditorID:    userID,
		Viewed:       0,
		StartedAt:    now,
		Comment:      "",
	}
	if err := sessions.Save(ctx, userID, chatID, sess); err != nil {
		return nil, err
	}
	if err := sessions.SetState(ctx, userID, chatID, conversation.StateAwaitingCount); err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}

	logger.Info("Task assigned",
		zap.String("support", task.Login),
		zap.String("skill", skill),
		zap.String("auditor", login))
	return &Result{Outcome: OutcomeAssigned, Skill: skill, Task: task, Session: sess}, nil
}

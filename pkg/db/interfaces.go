package db

import "context"

// RosterStore defines the database operations used by roster reconciliation
type RosterStore interface {
	ReconcileUsers(ctx context.Context, desired []User) error
	ReconcileAdmins(ctx context.Context, desired []Admin) error
	PatchSkills(ctx context.Context, updates []User) error
	DumpUsers(ctx context.Context) ([]User, error)
}

// TaskStore defines the database operations used by backlog ingestion and
// task distribution
type TaskStore interface {
	ReplaceTaskBatch(ctx context.Context, tasks []Task) error
	ClaimNextTask(ctx context.Context, skill string) (*Task, error)
	SetPriority(ctx context.Context, logins []string) (string, error)
}

// UserStore defines the per-requester lookups used by the distributor
type UserStore interface {
	UserLogin(ctx context.Context, id int64) (string, bool, error)
	AdminLogin(ctx context.Context, id int64) (string, bool, error)
	RotateSkill(ctx context.Context, id int64) (string, error)
}

// SessionStore defines durable conversation session storage keyed by user id.
// State and payload live in separate rows so a state transition never has to
// rewrite the payload.
type SessionStore interface {
	State(ctx context.Context, user int64) (string, error)
	SetState(ctx context.Context, user, chat int64, state string) error
	ClearState(ctx context.Context, user int64) error
	Data(ctx context.Context, user int64) ([]byte, bool, error)
	SetData(ctx context.Context, user, chat int64, payload []byte) error
	ClearSession(ctx context.Context, user int64) error
}

// Database aggregates every store interface; postgres.DB implements it.
type Database interface {
	RosterStore
	TaskStore
	UserStore
	SessionStore
}

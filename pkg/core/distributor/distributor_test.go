package distributor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/core/conversation"
	"github.com/avoronova/qc-taskbot/pkg/db"
)

// fakeUserStore rotates over a real skill list so tests can observe the
// round-robin order.
type fakeUserStore struct {
	user    *db.User
	rotated int
}

func (f *fakeUserStore) UserLogin(ctx context.Context, id int64) (string, bool, error) {
	if f.user == nil || f.user.ID != id {
		return "", false, nil
	}
	return f.user.Login, true, nil
}

func (f *fakeUserStore) AdminLogin(ctx context.Context, id int64) (string, bool, error) {
	return "", false, nil
}

func (f *fakeUserStore) RotateSkill(ctx context.Context, id int64) (string, error) {
	if f.user == nil || f.user.ID != id {
		return "", db.ErrNoUser
	}
	skills := f.user.SkillList()
	if len(skills) == 0 {
		return "", db.ErrNoSkills
	}
	f.rotated++
	current := f.user.Num
	next := current + 1
	if next >= len(skills) {
		next = 0
	}
	f.user.Num = next
	return skills[current], nil
}

type fakeTaskStore struct {
	tasks  map[string][]db.Task
	claims []string
}

func (f *fakeTaskStore) ClaimNextTask(ctx context.Context, skill string) (*db.Task, error) {
	f.claims = append(f.claims, skill)
	queue := f.tasks[skill]
	if len(queue) == 0 {
		return nil, nil
	}
	task := queue[0]
	f.tasks[skill] = queue[1:]
	return &task, nil
}

func (f *fakeTaskStore) ReplaceTaskBatch(ctx context.Context, tasks []db.Task) error {
	return nil
}

func (f *fakeTaskStore) SetPriority(ctx context.Context, logins []string) (string, error) {
	return "", nil
}

type fakeSessionStore struct {
	states map[int64]string
	data   map[int64][]byte
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{states: map[int64]string{}, data: map[int64][]byte{}}
}

func (f *fakeSessionStore) State(ctx context.Context, user int64) (string, error) {
	return f.states[user], nil
}

func (f *fakeSessionStore) SetState(ctx context.Context, user, chat int64, state string) error {
	f.states[user] = state
	return nil
}

func (f *fakeSessionStore) ClearState(ctx context.Context, user int64) error {
	delete(f.states, user)
	return nil
}

func (f *fakeSessionStore) Data(ctx context.Context, user int64) ([]byte, bool, error) {
	payload, ok := f.data[user]
	return payload, ok, nil
}

func (f *fakeSessionStore) SetData(ctx context.Context, user, chat int64, payload []byte) error {
	f.data[user] = payload
	return nil
}

func (f *fakeSessionStore) ClearSession(ctx context.Context, user int64) error {
	delete(f.states, user)
	delete(f.data, user)
	return nil
}

var requestedAt = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func TestRequestTask_UnknownUser(t *testing.T) {
	users := &fakeUserStore{}
	tasks := &fakeTaskStore{tasks: map[string][]db.Task{}}
	sessions := conversation.NewSessions(newFakeSessionStore())

	res, err := RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSuchUser, res.Outcome)
	assert.Empty(t, tasks.claims)
}

func TestRequestTask_NoSkills(t *testing.T) {
	users := &fakeUserStore{user: &db.User{Login: "alice", ID: 100, Skill: ""}}
	tasks := &fakeTaskStore{tasks: map[string][]db.Task{}}
	sessions := conversation.NewSessions(newFakeSessionStore())

	res, err := RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSkills, res.Outcome)
}

func TestRequestTask_Assigned(t *testing.T) {
	users := &fakeUserStore{user: &db.User{Login: "alice", ID: 100, Skill: "chat"}}
	tasks := &fakeTaskStore{tasks: map[string][]db.Task{
		"chat": {{Login: "agent1", Skill: "chat", Residue: 5}},
	}}
	store := newFakeSessionStore()
	sessions := conversation.NewSessions(store)

	res, err := RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAssigned, res.Outcome)
	require.NotNil(t, res.Task)
	assert.Equal(t, "agent1", res.Task.Login)

	require.NotNil(t, res.Session)
	assert.Equal(t, "agent1", res.Session.SupportLogin)
	assert.Equal(t, "20.05.2024", res.Session.Date)
	assert.Equal(t, "alice", res.Session.AuditorLogin)
	assert.Equal(t, int64(100), res.Session.AuditorID)
	assert.Equal(t, 0, res.Session.Viewed)

	assert.Equal(t, conversation.StateAwaitingCount, store.states[100])
}

// With skills "A,B" and an empty backlog, two consecutive requests both come
// back empty-handed while the rotation counter cycles 0 → 1 → 0.
func TestRequestTask_EmptyBacklogStillRotates(t *testing.T) {
	user := &db.User{Login: "alice", ID: 100, Skill: "A,B", Num: 0}
	users := &fakeUserStore{user: user}
	tasks := &fakeTaskStore{tasks: map[string][]db.Task{}}
	sessions := conversation.NewSessions(newFakeSessionStore())

	res, err := RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTask, res.Outcome)
	assert.Equal(t, "A", res.Skill)
	assert.Equal(t, 1, user.Num)

	res, err = RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTask, res.Outcome)
	assert.Equal(t, "B", res.Skill)
	assert.Equal(t, 0, user.Num)

	assert.Equal(t, []string{"A", "B"}, tasks.claims)
}

func TestRequestTask_ClaimedTaskNotReturnedTwice(t *testing.T) {
	users := &fakeUserStore{user: &db.User{Login: "alice", ID: 100, Skill: "chat"}}
	tasks := &fakeTaskStore{tasks: map[string][]db.Task{
		"chat": {{Login: "agent1", Skill: "chat", Residue: 5}},
	}}
	sessions := conversation.NewSessions(newFakeSessionStore())

	res, err := RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAssigned, res.Outcome)

	res, err = RequestTask(context.Background(), users, tasks, sessions, zap.NewNop(), 100, 500, requestedAt)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTask, res.Outcome)
}

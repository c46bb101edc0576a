package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avoronova/qc-taskbot/pkg/clients/sheetsclient"
)

// fakeSessionStore is an in-memory db.SessionStore
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

type recordedResult struct {
	supportLogin string
	date         string
	auditorLogin string
	auditorID    int64
	viewed       int
	elapsed      int
	comment      string
}

type fakeRecorder struct {
	appended    []recordedResult
	corrections []recordedResult
	correctErr  error
}

func (f *fakeRecorder) AppendResult(supportLogin, date, auditorLogin string, auditorID int64,
	viewed, elapsedSeconds int, comment string) error {
	f.appended = append(f.appended, recordedResult{
		supportLogin: supportLogin,
		date:         date,
		auditorLogin: auditorLogin,
		auditorID:    auditorID,
		viewed:       viewed,
		elapsed:      elapsedSeconds,
		comment:      comment,
	})
	return nil
}

func (f *fakeRecorder) CorrectViewedCount(supportLogin string, auditorID int64, viewed int) error {
	if f.correctErr != nil {
		return f.correctErr
	}
	f.corrections = append(f.corrections, recordedResult{
		supportLogin: supportLogin,
		auditorID:    auditorID,
		viewed:       viewed,
	})
	return nil
}

var assignedAt = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func openConversation(t *testing.T, sessions *Sessions) {
	t.Helper()
	ctx := context.Background()
	sess := &Session{
		SupportLogin: "agent1",
		Date:         assignedAt.Format(DateLayout),
		AuditorLogin: "alice",
		AuditorID:    100,
		StartedAt:    assignedAt,
	}
	require.NoError(t, sessions.Save(ctx, 100, 500, sess))
	require.NoError(t, sessions.SetState(ctx, 100, 500, StateAwaitingCount))
}

func TestHandleMessage_PositiveCountRecords(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	openConversation(t, sessions)

	now := assignedAt.Add(90 * time.Second)
	event, err := machine.HandleMessage(ctx, 100, 500, "7", now)
	require.NoError(t, err)
	assert.Equal(t, EventCountRecorded, event)

	require.Len(t, recorder.appended, 1)
	rec := recorder.appended[0]
	assert.Equal(t, "agent1", rec.supportLogin)
	assert.Equal(t, "20.05.2024", rec.date)
	assert.Equal(t, "alice", rec.auditorLogin)
	assert.Equal(t, int64(100), rec.auditorID)
	assert.Equal(t, 7, rec.viewed)
	assert.Equal(t, 90, rec.elapsed)
	assert.Equal(t, "", rec.comment)

	// Back to idle, but the payload survives for same-day correction.
	state, err := sessions.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "", state)
	_, ok, err := sessions.Load(ctx, 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHandleMessage_NonIntegerReprompts(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	openConversation(t, sessions)

	event, err := machine.HandleMessage(ctx, 100, 500, "seven", assignedAt)
	require.NoError(t, err)
	assert.Equal(t, EventReprompt, event)

	state, err := sessions.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCount, state)
	assert.Empty(t, recorder.appended)
}

func TestHandleMessage_ZeroCountNeedsComment(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	openConversation(t, sessions)

	event, err := machine.HandleMessage(ctx, 100, 500, "0", assignedAt)
	require.NoError(t, err)
	assert.Equal(t, EventCommentPrompt, event)
	assert.Empty(t, recorder.appended)

	event, err = machine.HandleMessage(ctx, 100, 500, "нет смен", assignedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, EventCommentRecorded, event)

	require.Len(t, recorder.appended, 1)
	assert.Equal(t, 0, recorder.appended[0].viewed)
	assert.Equal(t, "нет смен", recorder.appended[0].comment)
}

func TestHandleMessage_IdleIsNone(t *testing.T) {
	sessions := NewSessions(newFakeSessionStore())
	machine := NewMachine(sessions, &fakeRecorder{}, zap.NewNop())

	event, err := machine.HandleMessage(context.Background(), 100, 500, "7", assignedAt)
	require.NoError(t, err)
	assert.Equal(t, EventNone, event)
}

func finishConversation(t *testing.T, machine *Machine, sessions *Sessions) {
	t.Helper()
	openConversation(t, sessions)
	_, err := machine.HandleMessage(context.Background(), 100, 500, "7", assignedAt.Add(time.Minute))
	require.NoError(t, err)
}

func TestStartCorrection_SameDay(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	finishConversation(t, machine, sessions)

	err := machine.StartCorrection(ctx, 100, 500, assignedAt.Add(2*time.Hour))
	require.NoError(t, err)

	state, err := sessions.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCorrection, state)

	event, err := machine.HandleMessage(ctx, 100, 500, "9", assignedAt.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, EventCorrectionSaved, event)

	require.Len(t, recorder.corrections, 1)
	assert.Equal(t, "agent1", recorder.corrections[0].supportLogin)
	assert.Equal(t, int64(100), recorder.corrections[0].auditorID)
	assert.Equal(t, 9, recorder.corrections[0].viewed)
}

func TestStartCorrection_NextDayRejected(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	finishConversation(t, machine, sessions)

	err := machine.StartCorrection(ctx, 100, 500, assignedAt.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrStaleSubmission)
	assert.Empty(t, recorder.corrections)

	state, stateErr := sessions.State(ctx, 100)
	require.NoError(t, stateErr)
	assert.Equal(t, "", state)
}

func TestStartCorrection_NoSubmission(t *testing.T) {
	sessions := NewSessions(newFakeSessionStore())
	machine := NewMachine(sessions, &fakeRecorder{}, zap.NewNop())

	err := machine.StartCorrection(context.Background(), 100, 500, assignedAt)
	assert.ErrorIs(t, err, ErrNoSubmission)
}

func TestHandleMessage_CorrectionNotFound(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{correctErr: sheetsclient.ErrEntryNotFound}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	finishConversation(t, machine, sessions)
	require.NoError(t, machine.StartCorrection(ctx, 100, 500, assignedAt.Add(time.Hour)))

	event, err := machine.HandleMessage(ctx, 100, 500, "9", assignedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, EventCorrectionNotFound, event)
}

func TestCancelCorrection(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(newFakeSessionStore())
	recorder := &fakeRecorder{}
	machine := NewMachine(sessions, recorder, zap.NewNop())
	finishConversation(t, machine, sessions)
	require.NoError(t, machine.StartCorrection(ctx, 100, 500, assignedAt.Add(time.Hour)))

	require.NoError(t, machine.CancelCorrection(ctx, 100))

	state, err := sessions.State(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "", state)
	assert.Empty(t, recorder.corrections)
}

package attempt

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillgauge/assessment-engine/internal/db/repository"
	"github.com/skillgauge/assessment-engine/internal/engine"
	"github.com/skillgauge/assessment-engine/pkg/http/ws"
)

type memorySessionStore struct {
	sessions map[uuid.UUID]engine.SessionSnapshot
	locks    int
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[uuid.UUID]engine.SessionSnapshot{}}
}

func (m *memorySessionStore) Lock(_ context.Context, _ uuid.UUID) (func() error, error) {
	m.locks++
	return func() error { return nil }, nil
}

func (m *memorySessionStore) SaveSession(_ context.Context, id uuid.UUID, snap engine.SessionSnapshot) error {
	m.sessions[id] = snap
	return nil
}

func (m *memorySessionStore) GetSession(_ context.Context, id uuid.UUID) (*engine.SessionSnapshot, error) {
	if snap, ok := m.sessions[id]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (m *memorySessionStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

type memoryResultStore struct {
	attempts map[uuid.UUID]repository.CreateAttemptParams
	results  map[uuid.UUID]repository.UpsertResultParams
	statuses map[uuid.UUID]string
}

func newMemoryResultStore() *memoryResultStore {
	return &memoryResultStore{
		attempts: map[uuid.UUID]repository.CreateAttemptParams{},
		results:  map[uuid.UUID]repository.UpsertResultParams{},
		statuses: map[uuid.UUID]string{},
	}
}

func (m *memoryResultStore) CreateAttempt(_ context.Context, params repository.CreateAttemptParams) error {
	m.attempts[params.AttemptID] = params
	return nil
}

func (m *memoryResultStore) UpdateAttemptStatus(_ context.Context, id uuid.UUID, status string) error {
	m.statuses[id] = status
	return nil
}

func (m *memoryResultStore) UpsertResult(_ context.Context, params repository.UpsertResultParams) error {
	m.results[params.AttemptID] = params
	return nil
}

func (m *memoryResultStore) DeleteAttempt(_ context.Context, id uuid.UUID) error {
	delete(m.attempts, id)
	delete(m.results, id)
	return nil
}

type recordingPublisher struct {
	events []ws.Message
}

func (p *recordingPublisher) Publish(_ uuid.UUID, msg ws.Message) {
	p.events = append(p.events, msg)
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService() (*Service, *memorySessionStore, *memoryResultStore, *recordingPublisher) {
	state := newMemorySessionStore()
	repo := newMemoryResultStore()
	hub := &recordingPublisher{}
	return NewService(state, repo, hub, zerolog.Nop()), state, repo, hub
}

func sampleQuestions() []map[string]any {
	return []map[string]any{
		{"id": "q1", "question": "first", "options": []any{"a", "b"}, "correct_answer": "b", "difficulty": 1},
		{"id": "q2", "question": "second", "options": []any{"a", "b"}, "correct_answer": "b", "difficulty": 5},
	}
}

func TestCreateAttemptLoadsQuestions(t *testing.T) {
	svc, state, repo, hub := newTestService()

	created, err := svc.Create(context.Background(), uuid.New(), engine.TestNumerical, sampleQuestions())
	require.NoError(t, err)
	assert.Len(t, created.Questions, 2)
	assert.Equal(t, "q1", created.Questions[0].ID)

	// the candidate view never carries the correct answer
	for _, q := range created.Questions {
		assert.NotContains(t, q.Options, "correct_answer")
	}

	snap, err := state.GetSession(context.Background(), created.AttemptID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, engine.StateRunning, snap.State)

	assert.Contains(t, repo.attempts, created.AttemptID)
	assert.Equal(t, []string{ws.TypeAttemptStarted}, hub.types())
}

func TestAnswerFlowProducesResults(t *testing.T) {
	svc, _, repo, hub := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), engine.TestNumerical, sampleQuestions())
	require.NoError(t, err)

	require.NoError(t, svc.StartQuestion(ctx, created.AttemptID, "q1"))
	require.NoError(t, svc.RecordAnswer(ctx, created.AttemptID, "q1", "b"))

	report, err := svc.Results(ctx, created.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CorrectAnswers)
	assert.Equal(t, 2, report.TotalQuestions)
	assert.Equal(t, 50, report.CompletionRate)

	assert.Contains(t, repo.results, created.AttemptID)
	assert.Equal(t, "completed", repo.statuses[created.AttemptID])
	assert.Equal(t, []string{
		ws.TypeAttemptStarted,
		ws.TypeQuestionStarted,
		ws.TypeAnswerRecorded,
		ws.TypeAttemptCompleted,
	}, hub.types())
}

func TestAnswerChangeBeforeResults(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), engine.TestVerbal, sampleQuestions())
	require.NoError(t, err)

	require.NoError(t, svc.RecordAnswer(ctx, created.AttemptID, "q1", "a"))
	require.NoError(t, svc.RecordAnswer(ctx, created.AttemptID, "q1", "b"))

	report, err := svc.Results(ctx, created.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CorrectAnswers, "latest answer wins")
	assert.Equal(t, 50, report.CompletionRate)
}

func TestUnknownAttemptID(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	err := svc.RecordAnswer(ctx, uuid.New(), "q1", "b")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = svc.Results(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = svc.Breakdown(ctx, uuid.New(), "q1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestBreakdownExplainsScore(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), engine.TestLogical, sampleQuestions())
	require.NoError(t, err)
	require.NoError(t, svc.RecordAnswer(ctx, created.AttemptID, "q2", "b"))

	breakdown, err := svc.Breakdown(ctx, created.AttemptID, "q2")
	require.NoError(t, err)
	assert.True(t, breakdown.Correct)
	assert.Greater(t, breakdown.FinalScore, 0.0)

	// unknown question ids degrade to an empty breakdown, not an error
	empty, err := svc.Breakdown(ctx, created.AttemptID, "phantom")
	require.NoError(t, err)
	assert.False(t, empty.IsAnswered)
	assert.Zero(t, empty.FinalScore)
}

func TestDiscardDropsSession(t *testing.T) {
	svc, state, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), engine.TestSpatial, sampleQuestions())
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, created.AttemptID))

	snap, err := state.GetSession(ctx, created.AttemptID)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.NotContains(t, repo.attempts, created.AttemptID)

	err = svc.RecordAnswer(ctx, created.AttemptID, "q1", "b")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestMutationsTakeTheLock(t *testing.T) {
	svc, state, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.New(), engine.TestNumerical, sampleQuestions())
	require.NoError(t, err)

	locksBefore := state.locks
	require.NoError(t, svc.StartQuestion(ctx, created.AttemptID, "q1"))
	require.NoError(t, svc.RecordAnswer(ctx, created.AttemptID, "q1", "b"))
	assert.Equal(t, locksBefore+2, state.locks)
}

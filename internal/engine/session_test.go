package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(testType string) (*Session, *fakeClock) {
	s := NewSession(testType, zerolog.Nop())
	clock := newFakeClock()
	s.SetClock(clock.Now)
	return s, clock
}

func twoQuestionBatch() []map[string]any {
	return []map[string]any{
		{"id": "q1", "question": "first", "options": []any{"a", "b"}, "correct_answer": "b", "difficulty": 1},
		{"id": "q2", "question": "second", "options": []any{"a", "b"}, "correct_answer": "b", "difficulty": 5},
	}
}

func TestSessionPartialCompletion(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	require.Equal(t, 2, s.LoadQuestions(twoQuestionBatch()))
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(5 * time.Second)
	s.RecordAnswer("q1", "b")

	result := s.Results()
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 50, result.CompletionRate)
	assert.Greater(t, result.TotalScore, 0.0)

	// q2 contributes nothing while unanswered
	breakdown := s.ScoreBreakdown("q2")
	assert.False(t, breakdown.IsAnswered)
	assert.Zero(t, breakdown.FinalScore)
}

func TestSessionFasterHarderScoresMore(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(60 * time.Second)
	s.RecordAnswer("q1", "b")

	s.StartQuestionTimer("q2")
	clock.Advance(5 * time.Second)
	s.RecordAnswer("q2", "b")

	b1 := s.ScoreBreakdown("q1")
	b2 := s.ScoreBreakdown("q2")
	assert.Greater(t, b2.FinalScore, b1.FinalScore, "harder and faster must outscore easier and slower")

	result := s.Results()
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, 100, result.CompletionRate)
}

func TestSessionWrongAnswerScoresZero(t *testing.T) {
	s, clock := newTestSession(TestVerbal)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(1 * time.Second)
	s.RecordAnswer("q1", "a")

	assert.Zero(t, s.ScoreBreakdown("q1").FinalScore)
	assert.Zero(t, s.Results().CorrectAnswers)
}

func TestSessionEmptyBatch(t *testing.T) {
	s, _ := newTestSession(TestLogical)
	s.LoadQuestions([]map[string]any{})
	s.StartTest()

	result := s.Results()
	assert.Equal(t, 0, result.Percentage)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0, result.CompletionRate)
}

func TestSessionPhantomAnswerIgnored(t *testing.T) {
	s, _ := newTestSession(TestLogical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	assert.NotPanics(t, func() { s.RecordAnswer("unknown_id", "a") })

	result := s.Results()
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Zero(t, result.TotalScore, "phantom ids must not affect totals")
	assert.Equal(t, 0, result.CompletionRate, "only loaded questions count as answered")
}

func TestSessionNonArrayBatchIgnored(t *testing.T) {
	s, _ := newTestSession(TestVerbal)
	assert.Equal(t, 0, s.LoadQuestions("definitely not an array"))
	assert.Equal(t, 0, s.LoadQuestions(map[string]any{"id": "x"}))
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Questions())
}

func TestSessionIdempotentLoad(t *testing.T) {
	s, _ := newTestSession(TestVerbal)
	s.LoadQuestions(twoQuestionBatch())
	s.LoadQuestions([]map[string]any{
		{"id": "q1", "question": "updated", "correct_answer": "c", "difficulty": 3},
	})

	questions := s.Questions()
	require.Len(t, questions, 2, "re-loading an id overwrites, never duplicates")
	assert.Equal(t, "updated", questions[0].Prompt, "later load wins")
	assert.Equal(t, 3, questions[0].Difficulty)
	assert.Equal(t, "q1", questions[0].ID, "load order is preserved on overwrite")
}

func TestSessionResultsDeterministic(t *testing.T) {
	s, clock := newTestSession(TestAbstract)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()
	s.StartQuestionTimer("q1")
	clock.Advance(8 * time.Second)
	s.RecordAnswer("q1", "b")

	first := s.Results()
	second := s.Results()
	assert.Equal(t, first, second, "aggregation is a pure fold over session state")
}

func TestSessionAnswerWithoutTimer(t *testing.T) {
	s, _ := newTestSession(TestSpatial)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.RecordAnswer("q1", "b") // no StartQuestionTimer call

	b := s.ScoreBreakdown("q1")
	assert.True(t, b.Correct)
	assert.Zero(t, b.TimeTakenSeconds, "missing timer degrades to zero duration")
	assert.Greater(t, b.FinalScore, 0.0)
}

func TestSessionAnswerChange(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(3 * time.Second)
	s.RecordAnswer("q1", "a")
	s.RecordAnswer("q1", "b")

	result := s.Results()
	assert.Equal(t, 1, result.CorrectAnswers, "re-recording replaces the previous answer")
	assert.Equal(t, 50, result.CompletionRate, "answer changes do not double-count")
}

func TestSessionDifficultyBreakdown(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(4 * time.Second)
	s.RecordAnswer("q1", "b")
	s.StartQuestionTimer("q2")
	clock.Advance(4 * time.Second)
	s.RecordAnswer("q2", "a")

	result := s.Results()
	require.Contains(t, result.DifficultyBreakdown, 1)
	require.Contains(t, result.DifficultyBreakdown, 5)
	assert.Equal(t, DifficultyStats{Total: 1, Correct: 1, Accuracy: 100}, result.DifficultyBreakdown[1])
	assert.Equal(t, DifficultyStats{Total: 1, Correct: 0, Accuracy: 0}, result.DifficultyBreakdown[5])
}

func TestSessionAverageTimeAnsweredOnly(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()

	s.StartQuestionTimer("q1")
	clock.Advance(10 * time.Second)
	s.RecordAnswer("q1", "b")

	result := s.Results()
	assert.InDelta(t, 10.0, result.AverageTimeSeconds, 1e-9, "unanswered questions do not dilute the average")
}

func TestSessionLifecycle(t *testing.T) {
	s, clock := newTestSession(TestTechnical)
	assert.Equal(t, StateIdle, s.State())

	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()
	assert.Equal(t, StateRunning, s.State())

	clock.Advance(90 * time.Second)
	result := s.Results()
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 90, result.TestDurationSeconds)

	// completion is informational: late corrections are still accepted
	s.RecordAnswer("q1", "b")
	assert.Equal(t, 1, s.Results().CorrectAnswers)

	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Questions())
	assert.Zero(t, s.Results().TotalQuestions)
}

func TestSessionConfigFixedAfterStart(t *testing.T) {
	s, _ := newTestSession(TestNumerical)
	custom := ScoringConfig{TimeWeight: 0.9, DifficultyWeight: 0.9, AccuracyWeight: 0.5}
	s.UseConfig(custom)
	assert.Equal(t, custom, s.Config())

	s.StartTest()
	s.UseConfig(DefaultScoringConfig())
	assert.Equal(t, custom, s.Config(), "config changes after start are ignored")
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	s, clock := newTestSession(TestNumerical)
	s.LoadQuestions(twoQuestionBatch())
	s.StartTest()
	s.StartQuestionTimer("q1")
	clock.Advance(7 * time.Second)
	s.RecordAnswer("q1", "b")

	restored := RestoreSession(s.Snapshot(), zerolog.Nop())
	restored.SetClock(clock.Now)

	assert.Equal(t, s.TestType(), restored.TestType())
	assert.Equal(t, s.Config(), restored.Config())
	assert.Equal(t, s.State(), restored.State())
	assert.Equal(t, s.Questions(), restored.Questions())
	assert.Equal(t, s.Results(), restored.Results())
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testQuestion(difficulty int) Question {
	return Question{
		ID:            "q1",
		Type:          TypeMultipleChoice,
		CorrectAnswer: "b",
		Difficulty:    difficulty,
		Section:       1,
		ScoreWeight:   DefaultScoreWeight(),
		Category:      TestNumerical,
	}
}

func TestScoreWrongAnswerIsZero(t *testing.T) {
	cfg := PresetFor(TestNumerical)
	q := testQuestion(5)

	assert.Zero(t, Score(q, "a", 1, cfg), "wrong answers never earn partial credit")
	assert.Zero(t, Score(q, "", 1, cfg))
	assert.Zero(t, Score(q, "a", 9999, cfg))
}

func TestScoreCaseInsensitiveMatch(t *testing.T) {
	cfg := PresetFor(TestNumerical)
	q := testQuestion(1)

	assert.Greater(t, Score(q, "B", 5, cfg), 0.0)
	assert.Greater(t, Score(q, " b ", 5, cfg), 0.0)
}

func TestScoreMonotonicInTime(t *testing.T) {
	cfg := PresetFor(TestNumerical)
	q := testQuestion(3)

	prev := Score(q, "b", 0, cfg)
	for _, seconds := range []int{1, 5, 10, 30, 60, 120, 300, 1000} {
		score := Score(q, "b", seconds, cfg)
		assert.LessOrEqual(t, score, prev, "score must not increase with time taken (t=%d)", seconds)
		assert.Greater(t, score, 0.0, "correct answers always score above zero")
		prev = score
	}
}

func TestScoreRewardsDifficulty(t *testing.T) {
	cfg := PresetFor(TestNumerical)
	easy := Score(testQuestion(1), "b", 10, cfg)
	hard := Score(testQuestion(5), "b", 10, cfg)
	assert.Greater(t, hard, easy)
}

func TestScoreZeroDifficultyDoesNotPanic(t *testing.T) {
	cfg := DefaultScoringConfig()
	q := testQuestion(0) // normalization guarantees >=1 upstream, but scoring must not blow up
	assert.NotPanics(t, func() { Score(q, "b", 10, cfg) })
}

func TestMaxScoreBoundsInstantAnswer(t *testing.T) {
	cfg := PresetFor(TestAbstract)
	q := testQuestion(4)
	q.Category = TestAbstract

	assert.InDelta(t, MaxScore(q, cfg), Score(q, "b", 0, cfg), 1e-9,
		"max possible score equals a correct instant answer")
}

func TestTimeEfficiencyFloor(t *testing.T) {
	q := testQuestion(1)
	eff := timeEfficiency(100000, q)
	assert.Greater(t, eff, 0.0, "efficiency asymptotes to a non-negative floor")
	assert.Less(t, eff, 0.2)
}

func TestTimeEfficiencyContinuousAtWindowEdge(t *testing.T) {
	q := testQuestion(1)
	ideal := int(idealSeconds(q.Category, q.Difficulty))
	assert.InDelta(t, 1.0, timeEfficiency(ideal, q), 0.05)
}

func TestBreakdownComponents(t *testing.T) {
	cfg := PresetFor(TestNumerical)
	q := testQuestion(2)
	record := AnswerRecord{Answer: "b", TimeTakenSeconds: 10}

	b := Breakdown(q, &record, cfg)
	assert.True(t, b.Correct)
	assert.Equal(t, q.ScoreWeight.Base, b.BaseScore)
	assert.Greater(t, b.DifficultyBonus, 0.0)
	assert.Greater(t, b.TimeBonus, 0.0)
	assert.InDelta(t, Score(q, "b", 10, cfg), b.FinalScore, 1e-9)

	wrong := Breakdown(q, &AnswerRecord{Answer: "a"}, cfg)
	assert.False(t, wrong.Correct)
	assert.Zero(t, wrong.FinalScore)

	unanswered := Breakdown(q, nil, cfg)
	assert.False(t, unanswered.IsAnswered)
	assert.Zero(t, unanswered.FinalScore)
}

func TestPresetFallback(t *testing.T) {
	assert.Equal(t, DefaultScoringConfig(), PresetFor("interpretive-dance"))
	assert.NotEqual(t, PresetFor(TestAbstract), PresetFor(TestNumerical))
}

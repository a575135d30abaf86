package engine

import "strings"

// Ideal answer windows in seconds per test type at difficulty 1. The
// window widens with difficulty so harder questions are not penalized
// for taking longer.
var idealWindows = map[string]float64{
	TestNumerical:   45,
	TestVerbal:      30,
	TestLogical:     50,
	TestAbstract:    40,
	TestSpatial:     35,
	TestSituational: 60,
	TestTechnical:   55,
}

const (
	defaultIdealWindow  = 40
	idealWindowPerLevel = 0.25 // window grows 25% per difficulty level above 1
	timeEfficiencyFloor = 0.10
	maxTimeEfficiency   = 2.0 // instant correct answer
)

// idealSeconds returns the calibrated window for a question, keyed by its
// category (the owning test type) and widened by difficulty.
func idealSeconds(category string, difficulty int) float64 {
	base, ok := idealWindows[category]
	if !ok {
		base = defaultIdealWindow
	}
	if difficulty < 1 {
		difficulty = 1
	}
	return base * (1 + idealWindowPerLevel*float64(difficulty-1))
}

// timeEfficiency rewards faster correct answers. Within the ideal window
// it rises linearly from 1.0 at the window edge to 2.0 for an instant
// answer; past the window it decays toward a non-negative floor. The
// function is monotonically decreasing in elapsed time everywhere.
func timeEfficiency(seconds int, q Question) float64 {
	ideal := idealSeconds(q.Category, q.Difficulty)
	t := float64(seconds)
	if t < 0 {
		t = 0
	}
	if t <= ideal {
		return maxTimeEfficiency - t/ideal
	}
	return timeEfficiencyFloor + (1-timeEfficiencyFloor)*ideal/t
}

// answerMatches performs the case-insensitive correctness check. Both
// sides are trimmed; the stored correct answer is already lower-cased by
// normalization.
func answerMatches(q Question, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), q.CorrectAnswer)
}

// Score computes the weighted score for one answered question. Wrong
// answers earn exactly 0; correct answers earn base + difficulty bonus +
// time bonus, scaled by the config's accuracy weight. Full precision is
// kept here; rounding happens at the aggregation boundary.
func Score(q Question, answer string, seconds int, cfg ScoringConfig) float64 {
	if !answerMatches(q, answer) {
		return 0
	}
	base := q.ScoreWeight.Base
	difficultyBonus := float64(q.Difficulty) * q.ScoreWeight.DifficultyBonus * cfg.DifficultyWeight
	timeBonus := timeEfficiency(seconds, q) * q.ScoreWeight.TimeFactor * cfg.TimeWeight
	return (base + difficultyBonus + timeBonus) * cfg.AccuracyWeight
}

// MaxScore is the score of a correct, instant answer. Used only to
// normalize percentages; it never caps a question's actual score.
func MaxScore(q Question, cfg ScoringConfig) float64 {
	base := q.ScoreWeight.Base
	difficultyBonus := float64(q.Difficulty) * q.ScoreWeight.DifficultyBonus * cfg.DifficultyWeight
	timeBonus := maxTimeEfficiency * q.ScoreWeight.TimeFactor * cfg.TimeWeight
	return (base + difficultyBonus + timeBonus) * cfg.AccuracyWeight
}

// Breakdown explains the score components for one question. record may
// be nil when the question is unanswered.
func Breakdown(q Question, record *AnswerRecord, cfg ScoringConfig) ScoreBreakdown {
	b := ScoreBreakdown{
		QuestionID:    q.ID,
		CorrectAnswer: q.CorrectAnswer,
	}
	if record == nil {
		return b
	}
	b.IsAnswered = true
	b.UserAnswer = record.Answer
	b.TimeTakenSeconds = record.TimeTakenSeconds
	if !answerMatches(q, record.Answer) {
		return b
	}
	b.Correct = true
	b.BaseScore = q.ScoreWeight.Base
	b.DifficultyBonus = float64(q.Difficulty) * q.ScoreWeight.DifficultyBonus * cfg.DifficultyWeight
	b.TimeBonus = timeEfficiency(record.TimeTakenSeconds, q) * q.ScoreWeight.TimeFactor * cfg.TimeWeight
	b.FinalScore = (b.BaseScore + b.DifficultyBonus + b.TimeBonus) * cfg.AccuracyWeight
	return b
}

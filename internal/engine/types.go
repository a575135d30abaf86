package engine

import "time"

// Test type tags. Each maps to a scoring preset and a set of
// time-efficiency thresholds.
const (
	TestNumerical   = "numerical"
	TestVerbal      = "verbal"
	TestLogical     = "logical"
	TestAbstract    = "abstract"
	TestSpatial     = "spatial"
	TestSituational = "situational"
	TestTechnical   = "technical"
)

// Question type tags.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeNumerical      = "numerical"
	TypeTrueFalse      = "true_false"
	TypeClassification = "classification"
)

// ScoreWeight holds the per-question scoring knobs. Defaults are applied
// during normalization, so downstream code never sees zero values unless
// the question source set them explicitly.
type ScoreWeight struct {
	Base            float64 `json:"base"`
	DifficultyBonus float64 `json:"difficulty_bonus"`
	TimeFactor      float64 `json:"time_factor"`
}

// Question is the canonical post-normalization record. Every raw shape
// delivered by a test screen is converted into this before scoring.
type Question struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Prompt        string      `json:"prompt"`
	Options       []string    `json:"options"`
	CorrectAnswer string      `json:"correct_answer"` // lower-cased
	Difficulty    int         `json:"difficulty"`     // 1..5
	Section       int         `json:"section"`
	ScoreWeight   ScoreWeight `json:"score_weight"`
	Category      string      `json:"category"`
}

// AnswerRecord stores one normalized response per question id. Recording
// again for the same id replaces the previous record.
type AnswerRecord struct {
	Answer           string    `json:"answer"`
	SubmittedAt      time.Time `json:"submitted_at"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

// TimingEntry is the wall-clock window for one question. EndTime and
// Duration stay nil until an answer closes the entry.
type TimingEntry struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

// ScoringConfig weights the three score components. Fixed once a session
// starts scoring; presets per test type live in presets.go.
type ScoringConfig struct {
	TimeWeight       float64 `json:"time_weight"`
	DifficultyWeight float64 `json:"difficulty_weight"`
	AccuracyWeight   float64 `json:"accuracy_weight"`
}

// QuestionResult pairs a question with its scored outcome. Unanswered
// questions carry a zero score and still count toward totals.
type QuestionResult struct {
	Question   Question `json:"question"`
	UserAnswer string   `json:"user_answer"`
	TimeTaken  int      `json:"time_taken_seconds"`
	Score      float64  `json:"score"`
	IsAnswered bool     `json:"is_answered"`
}

// DifficultyStats reports accuracy within one difficulty bucket.
type DifficultyStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"` // percent
}

// TestResult is the aggregate report, recomputed on demand from the
// session tables and never mutated in place.
type TestResult struct {
	TotalScore          float64                 `json:"total_score"`
	MaxPossibleScore    float64                 `json:"max_possible_score"`
	Percentage          int                     `json:"percentage"`
	CorrectAnswers      int                     `json:"correct_answers"`
	TotalQuestions      int                     `json:"total_questions"`
	AverageTimeSeconds  float64                 `json:"average_time_seconds"`
	CompletionRate      int                     `json:"completion_rate"`
	DifficultyBreakdown map[int]DifficultyStats `json:"difficulty_breakdown"`
	TestDurationSeconds int                     `json:"test_duration_seconds"`
}

// ScoreBreakdown explains one question's score for UI transparency. It is
// never fed back into aggregation.
type ScoreBreakdown struct {
	QuestionID       string  `json:"question_id"`
	IsAnswered       bool    `json:"is_answered"`
	Correct          bool    `json:"correct"`
	UserAnswer       string  `json:"user_answer"`
	CorrectAnswer    string  `json:"correct_answer"`
	TimeTakenSeconds int     `json:"time_taken_seconds"`
	BaseScore        float64 `json:"base_score"`
	DifficultyBonus  float64 `json:"difficulty_bonus"`
	TimeBonus        float64 `json:"time_bonus"`
	FinalScore       float64 `json:"final_score"`
}

// DisplayResult is the presentation-ready report produced by Format.
type DisplayResult struct {
	TestResult
	TestType        string   `json:"test_type"`
	Grade           string   `json:"grade"`
	PerformanceTier string   `json:"performance_tier"`
	Recommendations []string `json:"recommendations"`
}

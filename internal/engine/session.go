package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Session state tags. The completed state is informational: answers may
// still be recorded after results are computed, since the real submission
// boundary is owned by the caller.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
)

// Session is the stateful scoring façade. It exclusively owns the three
// tables (questions, answers, timings) for its lifetime and performs no
// I/O; every operation is a synchronous, total function of its inputs.
// Sessions are single-threaded by design.
type Session struct {
	testType  string
	config    ScoringConfig
	questions map[string]Question
	order     []string
	answers   map[string]AnswerRecord
	timings   *Tracker
	startedAt time.Time
	state     string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSession creates an idle session for a test type, using that type's
// scoring preset.
func NewSession(testType string, logger zerolog.Logger) *Session {
	return &Session{
		testType:  testType,
		config:    PresetFor(testType),
		questions: make(map[string]Question),
		answers:   make(map[string]AnswerRecord),
		timings:   NewTracker(nil),
		state:     StateIdle,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the session clock. Intended for tests.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
	s.timings.now = now
}

// TestType returns the session's test type tag.
func (s *Session) TestType() string { return s.testType }

// Config returns the active scoring config.
func (s *Session) Config() ScoringConfig { return s.config }

// State reports the current lifecycle state.
func (s *Session) State() string { return s.state }

// UseConfig replaces the scoring config. Ignored once the test has
// started, so the config stays fixed for the life of an attempt.
func (s *Session) UseConfig(cfg ScoringConfig) {
	if s.state != StateIdle {
		s.logger.Warn().Str("state", s.state).Msg("config change ignored after test start")
		return
	}
	s.config = cfg
}

// LoadQuestions normalizes a raw batch and inserts it into the question
// table. Loading is idempotent per id: a repeated id overwrites, never
// duplicates. The only rejected input is a non-array value, which is
// logged and ignored. Returns the number of questions loaded.
func (s *Session) LoadQuestions(rawQuestions any) int {
	items, ok := rawBatch(rawQuestions)
	if !ok {
		s.logger.Warn().Str("test_type", s.testType).Msg("loadQuestions expects an array, batch ignored")
		return 0
	}
	for i, raw := range items {
		q := Normalize(raw, i, s.testType)
		if _, exists := s.questions[q.ID]; !exists {
			s.order = append(s.order, q.ID)
		}
		s.questions[q.ID] = q
	}
	return len(items)
}

// rawBatch coerces the supported batch shapes into a slice of raw
// question maps. Entries that are not objects are dropped with a default
// in their place rather than failing the batch.
func rawBatch(v any) ([]map[string]any, bool) {
	switch batch := v.(type) {
	case []map[string]any:
		return batch, true
	case []any:
		items := make([]map[string]any, 0, len(batch))
		for _, entry := range batch {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			} else {
				items = append(items, map[string]any{})
			}
		}
		return items, true
	}
	return nil, false
}

// StartTest records the session start time and moves to running. Calling
// again resets the start time.
func (s *Session) StartTest() {
	s.startedAt = s.now()
	s.state = StateRunning
}

// StartQuestionTimer opens (or reopens, on revisit) the timing window for
// a question. Unknown ids are allowed; they simply never contribute.
func (s *Session) StartQuestionTimer(id string) {
	s.timings.Start(id)
}

// RecordAnswer normalizes and stores a response, closing the question's
// timing window. Recording again for the same id replaces the previous
// record. An answer without a prior timer start gets a zero duration; an
// answer for an unloaded id is stored but contributes nothing to results.
func (s *Session) RecordAnswer(id, answer string) {
	duration := s.timings.Close(id)
	s.answers[id] = AnswerRecord{
		Answer:           normalizeAnswer(answer),
		SubmittedAt:      s.now(),
		TimeTakenSeconds: duration,
	}
}

// QuestionResults scores every loaded question in load order, with zero
// scores for unanswered ones.
func (s *Session) QuestionResults() []QuestionResult {
	results := make([]QuestionResult, 0, len(s.order))
	for _, id := range s.order {
		q := s.questions[id]
		record, answered := s.answers[id]
		r := QuestionResult{Question: q, IsAnswered: answered}
		if answered {
			r.UserAnswer = record.Answer
			r.TimeTaken = record.TimeTakenSeconds
			r.Score = Score(q, record.Answer, record.TimeTakenSeconds, s.config)
		}
		results = append(results, r)
	}
	return results
}

// Results aggregates the current tables into a TestResult and marks the
// session completed. The report is always recomputed from source state,
// so it can never drift from the underlying records.
func (s *Session) Results() TestResult {
	duration := 0
	if !s.startedAt.IsZero() {
		duration = int(math.Round(s.now().Sub(s.startedAt).Seconds()))
	}
	report := Aggregate(s.QuestionResults(), s.config, duration)
	if s.state == StateRunning {
		s.state = StateCompleted
	}
	return report
}

// ScoreBreakdown returns the component explanation for one question. An
// unknown id yields an empty breakdown carrying only the id.
func (s *Session) ScoreBreakdown(id string) ScoreBreakdown {
	q, ok := s.questions[id]
	if !ok {
		return ScoreBreakdown{QuestionID: id}
	}
	if record, answered := s.answers[id]; answered {
		return Breakdown(q, &record, s.config)
	}
	return Breakdown(q, nil, s.config)
}

// Questions returns the loaded questions in load order.
func (s *Session) Questions() []Question {
	out := make([]Question, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.questions[id])
	}
	return out
}

// Reset clears all three tables and the start time, returning to idle.
// This is the session's only cancellation primitive.
func (s *Session) Reset() {
	s.questions = make(map[string]Question)
	s.order = nil
	s.answers = make(map[string]AnswerRecord)
	s.timings.Reset()
	s.startedAt = time.Time{}
	s.state = StateIdle
}

// SessionSnapshot is the serializable form of a session, used to park
// in-flight attempts in external storage between requests.
type SessionSnapshot struct {
	TestType  string                  `json:"test_type"`
	Config    ScoringConfig           `json:"config"`
	Questions []Question              `json:"questions"`
	Answers   map[string]AnswerRecord `json:"answers"`
	Timings   map[string]TimingEntry  `json:"timings"`
	StartedAt time.Time               `json:"started_at"`
	State     string                  `json:"state"`
}

// Snapshot captures the full session state.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		TestType:  s.testType,
		Config:    s.config,
		Questions: s.Questions(),
		Answers:   copyAnswers(s.answers),
		Timings:   s.timings.Entries(),
		StartedAt: s.startedAt,
		State:     s.state,
	}
}

// RestoreSession rebuilds a session from a snapshot.
func RestoreSession(snap SessionSnapshot, logger zerolog.Logger) *Session {
	s := NewSession(snap.TestType, logger)
	s.config = snap.Config
	for _, q := range snap.Questions {
		s.order = append(s.order, q.ID)
		s.questions[q.ID] = q
	}
	for id, record := range snap.Answers {
		s.answers[id] = record
	}
	s.timings.RestoreEntries(snap.Timings)
	s.startedAt = snap.StartedAt
	if snap.State != "" {
		s.state = snap.State
	}
	return s
}

func copyAnswers(answers map[string]AnswerRecord) map[string]AnswerRecord {
	out := make(map[string]AnswerRecord, len(answers))
	for id, record := range answers {
		out[id] = record
	}
	return out
}

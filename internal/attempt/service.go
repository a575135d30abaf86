package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skillgauge/assessment-engine/internal/db/repository"
	"github.com/skillgauge/assessment-engine/internal/engine"
	"github.com/skillgauge/assessment-engine/pkg/http/ws"
)

// ErrAttemptNotFound is returned when no in-flight session exists for an
// attempt id.
var ErrAttemptNotFound = errors.New("attempt not found")

// SessionStore parks in-flight engine sessions between requests
// (implemented by the Redis-backed StateStore).
type SessionStore interface {
	Lock(ctx context.Context, attemptID uuid.UUID) (func() error, error)
	SaveSession(ctx context.Context, attemptID uuid.UUID, snap engine.SessionSnapshot) error
	GetSession(ctx context.Context, attemptID uuid.UUID) (*engine.SessionSnapshot, error)
	DeleteSession(ctx context.Context, attemptID uuid.UUID) error
}

// ResultStore persists attempt rows and computed reports (implemented by
// repository.ResultRepository).
type ResultStore interface {
	CreateAttempt(ctx context.Context, params repository.CreateAttemptParams) error
	UpdateAttemptStatus(ctx context.Context, attemptID uuid.UUID, status string) error
	UpsertResult(ctx context.Context, params repository.UpsertResultParams) error
	DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error
}

// Publisher fans progress events out to observers.
type Publisher interface {
	Publish(attemptID uuid.UUID, msg ws.Message)
}

// Service runs one scoring session per candidate attempt. The engine
// session itself is single-threaded; cross-request safety comes from the
// store's per-attempt lock.
type Service struct {
	state  SessionStore
	repo   ResultStore
	hub    Publisher
	logger zerolog.Logger
}

// NewService wires the attempt service.
func NewService(state SessionStore, repo ResultStore, hub Publisher, logger zerolog.Logger) *Service {
	return &Service{state: state, repo: repo, hub: hub, logger: logger}
}

// QuestionView is the candidate-facing projection of a question: the
// correct answer never leaves the server.
type QuestionView struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Difficulty int      `json:"difficulty"`
	Section    int      `json:"section"`
	Category   string   `json:"category"`
}

// Created describes a freshly created attempt.
type Created struct {
	AttemptID uuid.UUID
	TestType  string
	Questions []QuestionView
}

// Create normalizes and loads a question batch into a new session,
// starts the test clock and persists both the attempt row and the
// session snapshot.
func (s *Service) Create(ctx context.Context, candidateID uuid.UUID, testType string, rawQuestions []map[string]any) (Created, error) {
	attemptID := uuid.New()
	session := engine.NewSession(testType, s.logger)
	session.LoadQuestions(rawQuestions)
	session.StartTest()

	if err := s.repo.CreateAttempt(ctx, repository.CreateAttemptParams{
		AttemptID:   attemptID,
		CandidateID: candidateID,
		TestType:    testType,
		StartedAt:   time.Now(),
	}); err != nil {
		return Created{}, fmt.Errorf("create attempt: %w", err)
	}

	if err := s.state.SaveSession(ctx, attemptID, session.Snapshot()); err != nil {
		return Created{}, fmt.Errorf("save session: %w", err)
	}

	attemptsCreated.Inc()
	s.hub.Publish(attemptID, ws.NewMessage(ws.TypeAttemptStarted, map[string]string{
		"attempt_id": attemptID.String(),
		"test_type":  testType,
	}))

	return Created{
		AttemptID: attemptID,
		TestType:  testType,
		Questions: questionViews(session.Questions()),
	}, nil
}

// StartQuestion opens the timing window for a question.
func (s *Service) StartQuestion(ctx context.Context, attemptID uuid.UUID, questionID string) error {
	err := s.withSession(ctx, attemptID, func(session *engine.Session) {
		session.StartQuestionTimer(questionID)
	})
	if err != nil {
		return err
	}
	s.hub.Publish(attemptID, ws.NewMessage(ws.TypeQuestionStarted, ws.QuestionStartedPayload{
		AttemptID:  attemptID.String(),
		QuestionID: questionID,
	}))
	return nil
}

// RecordAnswer stores (or replaces) a candidate's answer and closes the
// question's timing window.
func (s *Service) RecordAnswer(ctx context.Context, attemptID uuid.UUID, questionID, answer string) error {
	var answered, total int
	err := s.withSession(ctx, attemptID, func(session *engine.Session) {
		session.RecordAnswer(questionID, answer)
		for _, r := range session.QuestionResults() {
			total++
			if r.IsAnswered {
				answered++
			}
		}
	})
	if err != nil {
		return err
	}
	answersRecorded.Inc()
	s.hub.Publish(attemptID, ws.NewMessage(ws.TypeAnswerRecorded, ws.AnswerRecordedPayload{
		AttemptID:      attemptID.String(),
		QuestionID:     questionID,
		AnsweredCount:  answered,
		TotalQuestions: total,
	}))
	return nil
}

// Results aggregates the session into a formatted report and persists
// it. Recomputing later replaces the stored row; the session stays
// available for late corrections.
func (s *Service) Results(ctx context.Context, attemptID uuid.UUID) (engine.DisplayResult, error) {
	var report engine.DisplayResult
	err := s.withSession(ctx, attemptID, func(session *engine.Session) {
		report = engine.Format(session.Results(), session.TestType())
	})
	if err != nil {
		return engine.DisplayResult{}, err
	}

	if err := s.persistResult(ctx, attemptID, report); err != nil {
		// The report is already computed; persistence failures should not
		// block the candidate's flow.
		s.logger.Error().Err(err).Str("attempt_id", attemptID.String()).Msg("persist result failed")
	}

	attemptsCompleted.Inc()
	s.hub.Publish(attemptID, ws.NewMessage(ws.TypeAttemptCompleted, ws.AttemptCompletedPayload{
		AttemptID:      attemptID.String(),
		Percentage:     report.Percentage,
		Grade:          report.Grade,
		CompletionRate: report.CompletionRate,
	}))
	return report, nil
}

// Breakdown returns the score explanation for one question.
func (s *Service) Breakdown(ctx context.Context, attemptID uuid.UUID, questionID string) (engine.ScoreBreakdown, error) {
	snap, err := s.state.GetSession(ctx, attemptID)
	if err != nil {
		return engine.ScoreBreakdown{}, err
	}
	if snap == nil {
		return engine.ScoreBreakdown{}, ErrAttemptNotFound
	}
	session := engine.RestoreSession(*snap, s.logger)
	return session.ScoreBreakdown(questionID), nil
}

// Discard drops the in-flight session and the attempt row. This is the
// deployment-level counterpart of the engine session's Reset.
func (s *Service) Discard(ctx context.Context, attemptID uuid.UUID) error {
	if err := s.state.DeleteSession(ctx, attemptID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.repo.DeleteAttempt(ctx, attemptID); err != nil {
		s.logger.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("delete attempt row failed")
	}
	s.hub.Publish(attemptID, ws.NewMessage(ws.TypeAttemptReset, map[string]string{
		"attempt_id": attemptID.String(),
	}))
	return nil
}

// withSession runs fn against a locked, rehydrated session and saves the
// snapshot back afterwards.
func (s *Service) withSession(ctx context.Context, attemptID uuid.UUID, fn func(*engine.Session)) error {
	unlock, err := s.state.Lock(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("lock attempt: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("unlock failed")
		}
	}()

	snap, err := s.state.GetSession(ctx, attemptID)
	if err != nil {
		return err
	}
	if snap == nil {
		return ErrAttemptNotFound
	}

	session := engine.RestoreSession(*snap, s.logger)
	fn(session)
	return s.state.SaveSession(ctx, attemptID, session.Snapshot())
}

func (s *Service) persistResult(ctx context.Context, attemptID uuid.UUID, report engine.DisplayResult) error {
	recommendations, err := json.Marshal(report.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	breakdown, err := json.Marshal(report.DifficultyBreakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	if err := s.repo.UpsertResult(ctx, repository.UpsertResultParams{
		AttemptID:           attemptID,
		TotalScore:          report.TotalScore,
		MaxPossibleScore:    report.MaxPossibleScore,
		Percentage:          report.Percentage,
		CorrectAnswers:      report.CorrectAnswers,
		TotalQuestions:      report.TotalQuestions,
		AverageTimeSeconds:  report.AverageTimeSeconds,
		CompletionRate:      report.CompletionRate,
		TestDurationSeconds: report.TestDurationSeconds,
		Grade:               report.Grade,
		PerformanceTier:     report.PerformanceTier,
		Recommendations:     recommendations,
		DifficultyBreakdown: breakdown,
	}); err != nil {
		return err
	}
	return s.repo.UpdateAttemptStatus(ctx, attemptID, "completed")
}

func questionViews(questions []engine.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionView{
			ID:         q.ID,
			Type:       q.Type,
			Prompt:     q.Prompt,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Section:    q.Section,
			Category:   q.Category,
		})
	}
	return views
}

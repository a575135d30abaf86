package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an attempt or result row does not exist.
var ErrNotFound = errors.New("not found")

// CreateAttemptParams holds the initial attempt row.
type CreateAttemptParams struct {
	AttemptID   uuid.UUID
	CandidateID uuid.UUID
	TestType    string
	StartedAt   time.Time
}

// UpsertResultParams holds the computed report for persistence. The
// breakdown and recommendations arrive pre-encoded as JSON so the
// repository stays decoupled from the engine's types.
type UpsertResultParams struct {
	AttemptID           uuid.UUID
	TotalScore          float64
	MaxPossibleScore    float64
	Percentage          int
	CorrectAnswers      int
	TotalQuestions      int
	AverageTimeSeconds  float64
	CompletionRate      int
	TestDurationSeconds int
	Grade               string
	PerformanceTier     string
	Recommendations     json.RawMessage
	DifficultyBreakdown json.RawMessage
}

// ResultRow mirrors the attempt_results table.
type ResultRow struct {
	AttemptID           uuid.UUID
	TotalScore          float64
	MaxPossibleScore    float64
	Percentage          int
	CorrectAnswers      int
	TotalQuestions      int
	AverageTimeSeconds  float64
	CompletionRate      int
	TestDurationSeconds int
	Grade               string
	PerformanceTier     string
	Recommendations     json.RawMessage
	DifficultyBreakdown json.RawMessage
	ComputedAt          time.Time
}

// ResultRepository persists attempts and their computed reports.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository constructs a repository over a pgx pool.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// CreateAttempt inserts the initial attempt row.
func (r *ResultRepository) CreateAttempt(ctx context.Context, params CreateAttemptParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (id, candidate_id, test_type, status, started_at)
		VALUES ($1, $2, $3, 'running', $4)`,
		params.AttemptID, params.CandidateID, params.TestType, params.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// UpdateAttemptStatus transitions an attempt's status.
func (r *ResultRepository) UpdateAttemptStatus(ctx context.Context, attemptID uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE attempts SET status = $2 WHERE id = $1`, attemptID, status)
	if err != nil {
		return fmt.Errorf("update attempt status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertResult stores a computed report. Results are derived data, so a
// recomputation simply replaces the previous row.
func (r *ResultRepository) UpsertResult(ctx context.Context, params UpsertResultParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempt_results (
			attempt_id, total_score, max_possible_score, percentage,
			correct_answers, total_questions, average_time_seconds,
			completion_rate, test_duration_seconds, grade, performance_tier,
			recommendations, difficulty_breakdown, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (attempt_id) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			max_possible_score = EXCLUDED.max_possible_score,
			percentage = EXCLUDED.percentage,
			correct_answers = EXCLUDED.correct_answers,
			total_questions = EXCLUDED.total_questions,
			average_time_seconds = EXCLUDED.average_time_seconds,
			completion_rate = EXCLUDED.completion_rate,
			test_duration_seconds = EXCLUDED.test_duration_seconds,
			grade = EXCLUDED.grade,
			performance_tier = EXCLUDED.performance_tier,
			recommendations = EXCLUDED.recommendations,
			difficulty_breakdown = EXCLUDED.difficulty_breakdown,
			computed_at = now()`,
		params.AttemptID, params.TotalScore, params.MaxPossibleScore, params.Percentage,
		params.CorrectAnswers, params.TotalQuestions, params.AverageTimeSeconds,
		params.CompletionRate, params.TestDurationSeconds, params.Grade, params.PerformanceTier,
		params.Recommendations, params.DifficultyBreakdown,
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// GetResult fetches the stored report for an attempt.
func (r *ResultRepository) GetResult(ctx context.Context, attemptID uuid.UUID) (ResultRow, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT attempt_id, total_score, max_possible_score, percentage,
			correct_answers, total_questions, average_time_seconds,
			completion_rate, test_duration_seconds, grade, performance_tier,
			recommendations, difficulty_breakdown, computed_at
		FROM attempt_results WHERE attempt_id = $1`, attemptID)

	var result ResultRow
	err := row.Scan(
		&result.AttemptID, &result.TotalScore, &result.MaxPossibleScore, &result.Percentage,
		&result.CorrectAnswers, &result.TotalQuestions, &result.AverageTimeSeconds,
		&result.CompletionRate, &result.TestDurationSeconds, &result.Grade, &result.PerformanceTier,
		&result.Recommendations, &result.DifficultyBreakdown, &result.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ResultRow{}, ErrNotFound
	}
	if err != nil {
		return ResultRow{}, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// DeleteAttempt removes an attempt and, via cascade, its result row.
func (r *ResultRepository) DeleteAttempt(ctx context.Context, attemptID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attempts WHERE id = $1`, attemptID)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	return nil
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	q := Normalize(map[string]any{
		"question": "What comes next: 2, 4, 8?",
		"options":  []any{"12", "16", "24"},
		"answer":   "16",
	}, 0, TestLogical)

	assert.Equal(t, "logical_1", q.ID)
	assert.Equal(t, TypeMultipleChoice, q.Type)
	assert.Equal(t, "What comes next: 2, 4, 8?", q.Prompt)
	assert.Equal(t, []string{"12", "16", "24"}, q.Options)
	assert.Equal(t, "16", q.CorrectAnswer)
	assert.Equal(t, 1, q.Difficulty)
	assert.Equal(t, 1, q.Section)
	assert.Equal(t, DefaultScoreWeight(), q.ScoreWeight)
	assert.Equal(t, TestLogical, q.Category)
}

func TestNormalizeFieldAliases(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"snake_case", map[string]any{"question_text": "p", "choices": []any{"a"}, "correct_answer": "A", "complexity_score": 3}},
		{"camelCase", map[string]any{"prompt": "p", "options": []any{"a"}, "correctAnswer": "A", "complexity": 3}},
		{"plain", map[string]any{"question": "p", "options": []any{"a"}, "correct_answer": "A", "difficulty": 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Normalize(tc.raw, 4, TestVerbal)
			assert.Equal(t, "verbal_5", q.ID)
			assert.Equal(t, "p", q.Prompt)
			assert.Equal(t, "a", q.CorrectAnswer)
			assert.Equal(t, 3, q.Difficulty)
		})
	}
}

func TestNormalizeNumericalShape(t *testing.T) {
	q := Normalize(map[string]any{
		"question_id":   float64(7),
		"question_text": "What is 15% of 200?",
		"options": []any{
			map[string]any{"text": "30", "value": "a"},
			map[string]any{"text": "25", "value": "b"},
		},
		"correct_answer": "30",
		"difficulty":     2,
	}, 0, TestNumerical)

	assert.Equal(t, "numerical_7", q.ID)
	assert.Equal(t, []string{"30", "25"}, q.Options, "option objects flatten to display text")
	assert.Equal(t, 2, q.Difficulty)
}

func TestNormalizeClampsDifficulty(t *testing.T) {
	low := Normalize(map[string]any{"difficulty": 0}, 0, TestAbstract)
	high := Normalize(map[string]any{"difficulty": 9}, 0, TestAbstract)
	assert.Equal(t, 1, low.Difficulty)
	assert.Equal(t, 5, high.Difficulty)
}

func TestNormalizeExplicitScoreWeight(t *testing.T) {
	q := Normalize(map[string]any{
		"score_weight": map[string]any{"base": float64(10), "difficulty_bonus": float64(4)},
	}, 0, TestSpatial)
	assert.Equal(t, ScoreWeight{Base: 10, DifficultyBonus: 4, TimeFactor: 1}, q.ScoreWeight)
}

func TestNormalizeLowercasesCorrectAnswer(t *testing.T) {
	q := Normalize(map[string]any{"correct_answer": "  B "}, 0, TestVerbal)
	assert.Equal(t, "b", q.CorrectAnswer)
}

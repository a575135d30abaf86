package engine

import (
	"fmt"
	"strings"
)

// Normalize converts a raw question object in any of the supported shapes
// into the canonical Question record. index is zero-based and used to
// synthesize an id when the raw object has none. Missing optional fields
// resolve to safe defaults, never errors.
func Normalize(raw map[string]any, index int, testType string) Question {
	q := Question{
		ID:            questionID(raw, index, testType),
		Type:          firstString(raw, "type", "question_type"),
		Prompt:        firstString(raw, "question", "question_text", "prompt"),
		Options:       optionList(raw),
		CorrectAnswer: normalizeAnswer(firstString(raw, "correct_answer", "correctAnswer", "answer")),
		Difficulty:    clampDifficulty(firstInt(raw, 1, "difficulty", "complexity_score", "complexity")),
		Section:       firstInt(raw, 1, "section"),
		ScoreWeight:   scoreWeight(raw),
		Category:      firstString(raw, "category"),
	}
	if q.Type == "" {
		q.Type = TypeMultipleChoice
	}
	if q.Category == "" {
		q.Category = testType
	}
	return q
}

// questionID prefers an explicit id, then the numeric question_id shape
// used by numerical-reasoning content, then a synthesized fallback.
func questionID(raw map[string]any, index int, testType string) string {
	if qid, ok := asNumber(raw["question_id"]); ok {
		return fmt.Sprintf("numerical_%d", int(qid))
	}
	if id := firstString(raw, "id"); id != "" {
		return id
	}
	return fmt.Sprintf("%s_%d", testType, index+1)
}

// optionList flattens option entries to their display text so answer
// comparison stays uniform. Numerical content ships options as objects
// with a text/label field; everything else ships plain strings.
func optionList(raw map[string]any) []string {
	var entries []any
	for _, key := range []string{"options", "choices"} {
		if list, ok := raw[key].([]any); ok {
			entries = list
			break
		}
	}
	if entries == nil {
		if list, ok := raw["options"].([]string); ok {
			return list
		}
		return nil
	}
	options := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			options = append(options, v)
		case map[string]any:
			options = append(options, firstString(v, "text", "label", "value", "option"))
		default:
			options = append(options, fmt.Sprint(v))
		}
	}
	return options
}

func scoreWeight(raw map[string]any) ScoreWeight {
	obj, ok := raw["score_weight"].(map[string]any)
	if !ok {
		obj, ok = raw["scoreWeight"].(map[string]any)
	}
	if !ok {
		return DefaultScoreWeight()
	}
	weight := DefaultScoreWeight()
	if v, ok := asNumber(obj["base"]); ok {
		weight.Base = v
	}
	if v, ok := asNumber(firstValue(obj, "difficulty_bonus", "difficultyBonus")); ok {
		weight.DifficultyBonus = v
	}
	if v, ok := asNumber(firstValue(obj, "time_factor", "timeFactor")); ok {
		weight.TimeFactor = v
	}
	return weight
}

// normalizeAnswer lower-cases and trims a response so comparisons are
// case-insensitive on both sides.
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func clampDifficulty(d int) int {
	if d < 1 {
		return 1
	}
	if d > 5 {
		return 5
	}
	return d
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64, int, int64, bool:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func firstInt(raw map[string]any, fallback int, keys ...string) int {
	for _, key := range keys {
		if v, ok := asNumber(raw[key]); ok {
			return int(v)
		}
	}
	return fallback
}

func firstValue(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			return v
		}
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

package engine

// Average-time cutoffs (seconds) used when labeling performance tiers.
// fast marks a comfortably quick pace for the test type, slow marks the
// point where speed practice becomes a recommendation.
type timeThresholds struct {
	fast float64
	slow float64
}

var tierThresholds = map[string]timeThresholds{
	TestNumerical: {fast: 35, slow: 70},
	TestVerbal:    {fast: 25, slow: 50},
	TestAbstract:  {fast: 30, slow: 65},
	TestSpatial:   {fast: 28, slow: 60},
	TestLogical:   {fast: 40, slow: 80},
}

var defaultThresholds = timeThresholds{fast: 30, slow: 60}

var studyTips = map[string]string{
	TestNumerical:   "Review ratio, percentage and data-interpretation fundamentals.",
	TestVerbal:      "Practice reading comprehension passages and vocabulary in context.",
	TestLogical:     "Work through syllogism and sequence drills to sharpen deduction.",
	TestAbstract:    "Practice pattern-recognition puzzles with rotating and mirrored shapes.",
	TestSpatial:     "Train with mental rotation and paper-folding exercises.",
	TestSituational: "Study common workplace scenarios and prioritize stakeholder impact.",
	TestTechnical:   "Revisit the core concepts of the technical domain being assessed.",
}

// Format maps a raw TestResult into a presentation-ready report. Pure
// mapping: no side effects, no session state.
func Format(result TestResult, testType string) DisplayResult {
	return DisplayResult{
		TestResult:      result,
		TestType:        testType,
		Grade:           gradeFor(result.Percentage),
		PerformanceTier: tierFor(result, testType),
		Recommendations: recommendationsFor(result, testType),
	}
}

func gradeFor(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

func thresholdsFor(testType string) timeThresholds {
	if t, ok := tierThresholds[testType]; ok {
		return t
	}
	return defaultThresholds
}

// tierFor combines percentage and pace: a high score answered slowly is
// demoted one tier.
func tierFor(result TestResult, testType string) string {
	t := thresholdsFor(testType)
	fastEnough := result.AverageTimeSeconds <= t.fast
	switch {
	case result.Percentage >= 85 && fastEnough:
		return "Excellent"
	case result.Percentage >= 85 || (result.Percentage >= 70 && fastEnough):
		return "Good"
	case result.Percentage >= 55:
		return "Average"
	case result.Percentage >= 40:
		return "Below Average"
	default:
		return "Needs Improvement"
	}
}

func recommendationsFor(result TestResult, testType string) []string {
	var recs []string

	if result.Percentage < 60 {
		tip, ok := studyTips[testType]
		if !ok {
			tip = "Review the fundamentals for this test type before reattempting."
		}
		recs = append(recs, tip)
	}

	if result.AverageTimeSeconds > thresholdsFor(testType).slow {
		recs = append(recs, "Practice answering under time pressure to improve your pace.")
	}

	if hardAccuracyUnder50(result.DifficultyBreakdown) {
		recs = append(recs, "Practice harder problems: accuracy drops sharply at the highest difficulty levels.")
	}

	if result.CompletionRate < 100 {
		recs = append(recs, "Work on time management so every question gets an answer.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Strong performance across the board. Keep up the consistent practice.")
	}
	return recs
}

// hardAccuracyUnder50 reports whether accuracy fell below 50% on any
// answered difficulty-4 or difficulty-5 bucket.
func hardAccuracyUnder50(breakdown map[int]DifficultyStats) bool {
	for _, difficulty := range []int{4, 5} {
		if stats, ok := breakdown[difficulty]; ok && stats.Total > 0 && stats.Accuracy < 50 {
			return true
		}
	}
	return false
}

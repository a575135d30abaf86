package engine

import "math"

// Aggregate folds per-question results into a TestResult. It is a pure
// function of its inputs: calling it twice with the same results yields
// identical output. Unanswered questions count toward totals but not
// toward the average time.
func Aggregate(results []QuestionResult, cfg ScoringConfig, testDurationSeconds int) TestResult {
	report := TestResult{
		TotalQuestions:      len(results),
		DifficultyBreakdown: make(map[int]DifficultyStats),
		TestDurationSeconds: testDurationSeconds,
	}

	var totalScore, maxScore, timeSum float64
	answered := 0
	for _, r := range results {
		totalScore += r.Score
		maxScore += MaxScore(r.Question, cfg)

		stats := report.DifficultyBreakdown[r.Question.Difficulty]
		stats.Total++
		if r.IsAnswered && answerMatches(r.Question, r.UserAnswer) {
			stats.Correct++
			report.CorrectAnswers++
		}
		report.DifficultyBreakdown[r.Question.Difficulty] = stats

		if r.IsAnswered {
			answered++
			timeSum += float64(r.TimeTaken)
		}
	}

	for difficulty, stats := range report.DifficultyBreakdown {
		stats.Accuracy = round2(100 * float64(stats.Correct) / float64(stats.Total))
		report.DifficultyBreakdown[difficulty] = stats
	}

	report.TotalScore = round2(totalScore)
	report.MaxPossibleScore = round2(maxScore)
	if maxScore > 0 {
		pct := int(math.Round(100 * totalScore / maxScore))
		if pct < 0 {
			pct = 0
		}
		report.Percentage = pct
	}
	if len(results) > 0 {
		report.CompletionRate = int(math.Round(100 * float64(answered) / float64(len(results))))
	}
	if answered > 0 {
		report.AverageTimeSeconds = round2(timeSum / float64(answered))
	}
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

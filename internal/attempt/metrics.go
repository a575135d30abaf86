package attempt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assessment_attempts_created_total",
		Help: "Number of assessment attempts created.",
	})
	attemptsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assessment_attempts_completed_total",
		Help: "Number of attempts whose results were computed.",
	})
	answersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assessment_answers_recorded_total",
		Help: "Number of answers recorded, including re-records.",
	})
)

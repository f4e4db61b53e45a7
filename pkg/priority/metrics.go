package priority

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schedmate",
		Subsystem: "priority",
		Name:      "score_duration_seconds",
		Help:      "Duration of priority scoring requests",
	}, []string{"provider"})

	scoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schedmate",
		Subsystem: "priority",
		Name:      "score_failures_total",
		Help:      "Number of failed priority scoring requests",
	}, []string{"provider"})
)

// Package metrics exposes Prometheus collectors for tracker activity.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"jobtracker/internal/tracker"
)

var (
	once sync.Once

	applicationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_applications_created_total",
		Help: "Job applications added.",
	})

	fieldUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobtracker_field_updates_total",
			Help: "Successful single-field updates, by field.",
		},
		[]string{"field"},
	)

	stepsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobtracker_steps_created_total",
			Help: "Timeline steps created, by origin (manual or transition).",
		},
		[]string{"origin"},
	)

	boardVisits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_job_board_visits_total",
		Help: "Explicit job board visits.",
	})

	dailyApplications = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_daily_applications",
		Help: "Applications created today as of the last digest.",
	})

	dailyGoal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jobtracker_daily_goal",
		Help: "Configured daily application goal.",
	})
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			applicationsCreated, fieldUpdates, stepsCreated,
			boardVisits, dailyApplications, dailyGoal,
		)
	})
}

// Observer feeds tracker mutations into the collectors.
type Observer struct{}

var _ tracker.Observer = Observer{}

func (Observer) ApplicationCreated() { applicationsCreated.Inc() }

func (Observer) FieldUpdated(f tracker.Field) { fieldUpdates.WithLabelValues(string(f)).Inc() }

func (Observer) StepCreated(automatic bool) {
	origin := "manual"
	if automatic {
		origin = "transition"
	}
	stepsCreated.WithLabelValues(origin).Inc()
}

func (Observer) JobBoardVisited() { boardVisits.Inc() }

// SetDailyProgress records the latest digest figures.
func SetDailyProgress(p tracker.Progress) {
	dailyApplications.Set(float64(p.Count))
	dailyGoal.Set(float64(p.Goal))
}

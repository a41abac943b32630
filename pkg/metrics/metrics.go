// Package metrics provides Prometheus metrics for allocation runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/jakechorley/lead-allocator/pkg/core/milp"
)

// JobName labels pushed metrics
const JobName = "lead_allocator"

// Registry is the custom prometheus registry for the allocator
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// SolveDurationSeconds tracks time spent in the solver
var SolveDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "allocator",
	Name:      "solve_duration_seconds",
	Help:      "Time taken to solve the lead assignment model",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
}, []string{"backend"})

// SolvesTotal counts solves by outcome
var SolvesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "allocator",
	Name:      "solves_total",
	Help:      "Total solves by status and backend",
}, []string{"status", "backend"})

// LeadsAssigned is the number of leads assigned by the last solve
var LeadsAssigned = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocator",
	Name:      "leads_assigned",
	Help:      "Number of leads assigned by the last solve",
})

// ObjectiveValue is the objective of the last optimal solve
var ObjectiveValue = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "allocator",
	Name:      "objective_value",
	Help:      "Satisfaction objective of the last optimal solve",
})

// Recorder writes solve outcomes to the package metrics
type Recorder struct{}

// RecordSolve records one solve. Non-optimal solves leave ObjectiveValue untouched.
func (Recorder) RecordSolve(backend, status string, duration time.Duration, assigned int, objective float64) {
	SolveDurationSeconds.WithLabelValues(backend).Observe(duration.Seconds())
	SolvesTotal.WithLabelValues(status, backend).Inc()
	LeadsAssigned.Set(float64(assigned))
	if status == milp.StatusOptimal.String() {
		ObjectiveValue.Set(objective)
	}
}

// Push sends the registry to a Pushgateway
func Push(url string) error {
	if err := push.New(url, JobName).Gatherer(Registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

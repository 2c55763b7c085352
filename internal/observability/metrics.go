package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of service operations.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

// MatchMetrics adds round lifecycle counters.
type MatchMetrics interface {
	OperationMetrics
	RecordRoundStarted(ctx context.Context)
	RecordAnswer(ctx context.Context, correct bool)
	RecordMatchCompleted(ctx context.Context)
	RecordAutoAdvance(ctx context.Context, outcome string)
}

type prometheusOperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewPrometheusOperationMetrics registers operation counters on reg.
func NewPrometheusOperationMetrics(reg prometheus.Registerer) (OperationMetrics, error) {
	m := &prometheusOperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "operation_success_total",
			Help:      "Service operations that returned without an infrastructure error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an infrastructure error or panicked.",
		}, []string{"service", "operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frenzy",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.successes, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusOperationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(service, operation).Observe(d.Seconds())
}

type prometheusMatchMetrics struct {
	OperationMetrics
	roundsStarted    prometheus.Counter
	answers          *prometheus.CounterVec
	matchesCompleted prometheus.Counter
	autoAdvance      *prometheus.CounterVec
}

// NewPrometheusMatchMetrics registers round lifecycle counters on reg and
// delegates operation metrics to ops.
func NewPrometheusMatchMetrics(reg prometheus.Registerer, ops OperationMetrics) (MatchMetrics, error) {
	m := &prometheusMatchMetrics{
		OperationMetrics: ops,
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "rounds_started_total",
			Help:      "Rounds created.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "answers_total",
			Help:      "Accepted answers by correctness.",
		}, []string{"correct"}),
		matchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "matches_completed_total",
			Help:      "Matches that ran out of flashcards.",
		}),
		autoAdvance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frenzy",
			Name:      "auto_advance_total",
			Help:      "Auto-advance task outcomes.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{m.roundsStarted, m.answers, m.matchesCompleted, m.autoAdvance} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMatchMetrics) RecordRoundStarted(context.Context) { m.roundsStarted.Inc() }

func (m *prometheusMatchMetrics) RecordAnswer(_ context.Context, correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	m.answers.WithLabelValues(label).Inc()
}

func (m *prometheusMatchMetrics) RecordMatchCompleted(context.Context) { m.matchesCompleted.Inc() }

func (m *prometheusMatchMetrics) RecordAutoAdvance(_ context.Context, outcome string) {
	m.autoAdvance.WithLabelValues(outcome).Inc()
}

// NoOpMetrics satisfies every metrics interface and records nothing.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordRoundStarted(context.Context)                                    {}
func (NoOpMetrics) RecordAnswer(context.Context, bool)                                    {}
func (NoOpMetrics) RecordMatchCompleted(context.Context)                                  {}
func (NoOpMetrics) RecordAutoAdvance(context.Context, string)                             {}

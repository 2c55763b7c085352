// Package observability builds the logger, metrics registry and tracer shared
// by every module.
package observability

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects how telemetry is emitted.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
}

// Provider owns process-wide sinks.
type Provider struct {
	Logger     *slog.Logger
	Prometheus *prometheus.Registry
}

// Registry holds the per-domain instruments handed to modules.
type Registry struct {
	Tracer           trace.Tracer
	FlashcardMetrics OperationMetrics
	PlayerMetrics    OperationMetrics
	ScoreMetrics     OperationMetrics
	MatchMetrics     MatchMetrics
}

// Observability bundles Provider and Registry.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init creates a JSON slog logger, a Prometheus registry with Go runtime
// collectors and one metrics set per service, and an OpenTelemetry tracer.
func Init(cfg Config) (Observability, error) {
	return initWith(cfg, os.Stdout)
}

func initWith(cfg Config, out io.Writer) (Observability, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "flashcard-frenzy"
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})).
		With(slog.String("service", cfg.ServiceName), slog.String("env", cfg.Environment))

	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return Observability{}, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return Observability{}, err
	}

	ops, err := NewPrometheusOperationMetrics(reg)
	if err != nil {
		return Observability{}, err
	}
	match, err := NewPrometheusMatchMetrics(reg, ops)
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Provider: &Provider{Logger: logger, Prometheus: reg},
		Registry: &Registry{
			Tracer:           otel.Tracer(cfg.ServiceName),
			FlashcardMetrics: ops,
			PlayerMetrics:    ops,
			ScoreMetrics:     ops,
			MatchMetrics:     match,
		},
	}, nil
}

// NewNoop returns an Observability that discards everything. Used by tests.
func NewNoop() Observability {
	return Observability{
		Provider: &Provider{
			Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
			Prometheus: prometheus.NewRegistry(),
		},
		Registry: &Registry{
			Tracer:           noop.NewTracerProvider().Tracer("test"),
			FlashcardMetrics: NoOpMetrics{},
			PlayerMetrics:    NoOpMetrics{},
			ScoreMetrics:     NoOpMetrics{},
			MatchMetrics:     NoOpMetrics{},
		},
	}
}

// MetricsHandler exposes the registry in the Prometheus text format.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.Prometheus, promhttp.HandlerOpts{Registry: p.Prometheus})
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

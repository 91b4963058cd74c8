package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

var (
	_ ports.SyncObserver = (*LogObserver)(nil)
	_ ports.SyncObserver = (*MetricsObserver)(nil)
	_ ports.SyncObserver = (*StatusObserver)(nil)
)

// LogObserver writes one log line per reconciliation pass.
type LogObserver struct{}

// NewLogObserver creates a LogObserver. It logs through the context logger.
func NewLogObserver() *LogObserver {
	return &LogObserver{}
}

// SyncCompleted implements ports.SyncObserver.
func (o *LogObserver) SyncCompleted(ctx context.Context, report ports.SyncReport) {
	logger := logging.FromContext(ctx)

	attrs := []any{
		slog.String("outcome", string(report.Outcome)),
		slog.Int("fetched", report.Fetched),
		slog.Int("total", report.Total),
		slog.Uint64("version", report.Version),
		slog.Duration("duration", report.Duration),
	}

	switch report.Outcome {
	case ports.SyncFailed:
		logger.WarnContext(ctx, "quote sync failed", append(attrs,
			slog.String("step", report.FailedStep),
			slog.String("error", report.Error),
		)...)
	case ports.SyncUpdated:
		logger.InfoContext(ctx, "quote sync applied remote changes", attrs...)
	default:
		logger.DebugContext(ctx, "quote sync found no changes", attrs...)
	}
}

// MetricsObserver exports reconciliation outcomes to Prometheus.
type MetricsObserver struct {
	syncTotal      *prometheus.CounterVec
	repositorySize prometheus.Gauge
	lastDuration   prometheus.Gauge
}

// NewMetricsObserver registers the sync metrics with reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_sync_total",
			Help: "Reconciliation passes by outcome.",
		}, []string{"outcome"}),
		repositorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotes_repository_size",
			Help: "Number of quotes in the repository after the last pass.",
		}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quotes_sync_duration_seconds",
			Help: "Duration of the last reconciliation pass.",
		}),
	}

	for _, c := range []prometheus.Collector{o.syncTotal, o.repositorySize, o.lastDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-create the outcome series so dashboards see zeros before the first pass.
	for _, outcome := range []ports.SyncOutcome{ports.SyncUpdated, ports.SyncUnchanged, ports.SyncFailed} {
		o.syncTotal.WithLabelValues(string(outcome))
	}

	return o, nil
}

// SyncCompleted implements ports.SyncObserver.
func (o *MetricsObserver) SyncCompleted(_ context.Context, report ports.SyncReport) {
	o.syncTotal.WithLabelValues(string(report.Outcome)).Inc()
	o.repositorySize.Set(float64(report.Total))
	o.lastDuration.Set(report.Duration.Seconds())
}

// SyncStatus summarizes reconciliation history for the API.
type SyncStatus struct {
	Last     *ports.SyncReport `json:"last,omitempty"`
	Runs     int               `json:"runs"`
	Failures int               `json:"failures"`
}

// StatusObserver keeps the latest report and simple counters.
type StatusObserver struct {
	mu     sync.RWMutex
	status SyncStatus
}

// NewStatusObserver creates an empty StatusObserver.
func NewStatusObserver() *StatusObserver {
	return &StatusObserver{}
}

// SyncCompleted implements ports.SyncObserver.
func (o *StatusObserver) SyncCompleted(_ context.Context, report ports.SyncReport) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status.Last = &report
	o.status.Runs++

	if report.Outcome == ports.SyncFailed {
		o.status.Failures++
	}
}

// Status returns a copy of the current status.
func (o *StatusObserver) Status() SyncStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := o.status
	if status.Last != nil {
		last := *status.Last
		status.Last = &last
	}

	return status
}

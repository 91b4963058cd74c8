package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Reconciler defaults.
const (
	DefaultSyncInterval  = 15 * time.Second
	DefaultSyncBatchSize = 10
)

// ReconcilerConfig contains the dependencies and tuning of a Reconciler.
type ReconcilerConfig struct {
	Source    ports.QuoteSource
	Service   *QuoteService
	Observers []ports.SyncObserver
	Logger    *slog.Logger

	// Interval between passes in Run. Defaults to DefaultSyncInterval.
	Interval time.Duration

	// BatchSize bounds each fetch. Defaults to DefaultSyncBatchSize.
	BatchSize int

	Now func() time.Time
}

// Reconciler periodically fetches a bounded batch of remote quotes and merges
// it into the repository, remote winning by ID.
type Reconciler struct {
	source    ports.QuoteSource
	service   *QuoteService
	observers []ports.SyncObserver
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time

	// passMu serializes passes started by Run and by on-demand callers.
	passMu sync.Mutex
}

// syncResult carries a pass from verify to respond. SyncOnce keeps its own
// copy so a committed merge is reported even if a later step fails.
type syncResult struct {
	fetched int
	changed bool
}

// NewReconciler creates a reconciler. It panics without a source or service.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Source == nil || cfg.Service == nil {
		panic("app: Reconciler requires a quote source and a quote service")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultSyncBatchSize
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Reconciler{
		source:    cfg.Source,
		service:   cfg.Service,
		observers: cfg.Observers,
		logger:    cfg.Logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		now:       cfg.Now,
	}
}

// Run performs a pass immediately and then one per interval until ctx is
// cancelled. A failed pass is reported to the observers and does not stop
// the loop. Run returns nil once ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	ctx = logging.WithContext(ctx, r.logger)

	r.logger.InfoContext(ctx, "reconciler started",
		slog.Duration("interval", r.interval),
		slog.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		_, _ = r.SyncOnce(ctx)

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "reconciler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// SyncOnce fetches one batch, merges it, and notifies the observers.
// On a fetch failure the repository is untouched and the report outcome is
// ports.SyncFailed.
func (r *Reconciler) SyncOnce(ctx context.Context) (ports.SyncReport, error) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	runID := uuid.NewString()
	ctx = logging.WithSyncRun(ctx, runID)

	ctx, span := telemetry.StartSyncSpan(ctx, runID)

	started := r.now()

	var applied syncResult

	_, err := Execute(ctx, r.operation(&applied), r.batchSize)

	report := ports.SyncReport{
		Outcome:   ports.SyncUnchanged,
		Fetched:   applied.fetched,
		Total:     r.service.Len(),
		Version:   r.service.Version(),
		StartedAt: started,
		Duration:  r.now().Sub(started),
	}

	switch {
	case err != nil:
		report.Outcome = ports.SyncFailed
		report.Error = err.Error()

		if step, ok := FailedStep(err); ok {
			report.FailedStep = string(step)
		}
	case applied.changed:
		report.Outcome = ports.SyncUpdated
	}

	telemetry.EndSpan(span, err)
	r.notify(ctx, report)

	return report, err
}

func (r *Reconciler) operation(applied *syncResult) Operation[int, []domain.Quote, syncResult, syncResult] {
	return Operation[int, []domain.Quote, syncResult, syncResult]{
		Name: "sync_quotes",
		Validate: func(_ context.Context, limit int) error {
			if limit < 1 {
				return domain.NewValidationError("batch_size", "must be positive")
			}

			return nil
		},
		Perform: func(ctx context.Context, limit int) ([]domain.Quote, error) {
			return r.source.FetchQuotes(ctx, limit)
		},
		Verify: func(ctx context.Context, _ int, remote []domain.Quote) (syncResult, error) {
			changed, err := r.service.ApplyRemote(ctx, remote)
			if err != nil {
				return syncResult{}, err
			}

			*applied = syncResult{fetched: len(remote), changed: changed}

			return *applied, nil
		},
		Archive: func(ctx context.Context, _ int, _ syncResult) error {
			// Best effort: the merge is already committed.
			if err := r.service.RecordSync(ctx, r.now()); err != nil {
				logging.FromContext(ctx).WarnContext(ctx, "recording sync time failed", slog.Any("error", err))
			}

			return nil
		},
		Respond: func(_ context.Context, _ int, res syncResult) (syncResult, error) {
			return res, nil
		},
	}
}

func (r *Reconciler) notify(ctx context.Context, report ports.SyncReport) {
	// Observers run after cancellation too, so a final failed pass is still recorded.
	ctx = context.WithoutCancel(ctx)

	for _, o := range r.observers {
		o.SyncCompleted(ctx, report)
	}
}

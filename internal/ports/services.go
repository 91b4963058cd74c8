// Package ports defines the interfaces the quote service depends on.
// Ports are contracts that adapters implement, so the application layer can
// depend on abstractions rather than on sqlite, HTTP, or prometheus.
//
// Port Design Principles:
//   - Context as first parameter for anything that may block
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Well-known storage keys.
const (
	// KeyQuotes holds the serialized quote repository in the persistent store.
	KeyQuotes = "quotes"

	// KeySelectedCategory holds the last selected filter label in the persistent store.
	KeySelectedCategory = "selectedCategory"

	// KeyLastViewedQuote holds the last displayed quote in the session store.
	KeyLastViewedQuote = "lastViewedQuoteText"

	// KeyLastSync holds the RFC 3339 time of the last successful reconciliation.
	KeyLastSync = "lastSyncedAt"
)

// KeyValueStore is a string-keyed blob store. The persistent store and the
// session store share this contract and differ only in lifetime.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// A missing key returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// QuoteSource fetches quotes from the remote collection endpoint.
type QuoteSource interface {
	// FetchQuotes returns at most limit quotes from the remote collection,
	// already mapped into domain quotes.
	// Returns domain.ErrUnavailable if the endpoint cannot be reached or decoded.
	FetchQuotes(ctx context.Context, limit int) ([]domain.Quote, error)
}

// QuotePublisher pushes a locally created quote to the remote collection.
type QuotePublisher interface {
	// PublishQuote posts q to the remote collection.
	PublishQuote(ctx context.Context, q domain.Quote) error
}

// SyncOutcome classifies the result of one reconciliation pass.
type SyncOutcome string

const (
	// SyncUpdated means the merged result differed and was persisted.
	SyncUpdated SyncOutcome = "updated"

	// SyncUnchanged means the remote batch changed nothing locally.
	SyncUnchanged SyncOutcome = "unchanged"

	// SyncFailed means the fetch failed and the repository was left untouched.
	SyncFailed SyncOutcome = "failed"
)

// SyncReport describes one reconciliation pass.
type SyncReport struct {
	Outcome   SyncOutcome   `json:"outcome"`
	Fetched   int           `json:"fetched"`
	Total     int           `json:"total"`
	Version   uint64        `json:"version"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`

	// FailedStep names the pass stage that failed, empty on success.
	FailedStep string `json:"failedStep,omitempty"`
}

// SyncObserver is notified after every reconciliation pass, successful or not.
// Implementations must not block for long; they run on the reconciler goroutine.
type SyncObserver interface {
	SyncCompleted(ctx context.Context, report SyncReport)
}

// SyncObserverFunc adapts a function to SyncObserver.
type SyncObserverFunc func(ctx context.Context, report SyncReport)

// SyncCompleted implements SyncObserver.
func (f SyncObserverFunc) SyncCompleted(ctx context.Context, report SyncReport) {
	f(ctx, report)
}

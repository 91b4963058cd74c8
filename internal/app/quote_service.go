// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// ErrNoQuotes is returned when a random draw finds nothing to choose from.
var ErrNoQuotes = fmt.Errorf("no quotes available: %w", domain.ErrNotFound)

// QuoteService owns the quote repository and its category index.
// Every mutation takes the writer lock, is persisted before it becomes
// visible, and bumps the repository version.
type QuoteService struct {
	mu         sync.RWMutex
	quotes     []domain.Quote
	categories *domain.CategoryIndex
	selected   string
	lastViewed string
	lastSync   time.Time
	version    uint64
	lastID     int64

	store     ports.KeyValueStore
	session   ports.KeyValueStore
	publisher ports.QuotePublisher
	logger    *slog.Logger
	now       func() time.Time
	intN      func(n int) int
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	// Store persists the repository and the selected category. Required.
	Store ports.KeyValueStore

	// Session holds the last viewed quote. Required.
	Session ports.KeyValueStore

	// Publisher receives newly added quotes. Nil disables publishing.
	Publisher ports.QuotePublisher

	Logger *slog.Logger

	// Now and IntN default to time.Now and math/rand/v2.IntN.
	Now  func() time.Time
	IntN func(n int) int
}

// AddResult reports a successful add and the outcome of publishing it.
type AddResult struct {
	Quote      domain.Quote
	Published  bool
	PublishErr error
}

// NewQuoteService creates a quote service. Call Init before serving requests.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil || cfg.Session == nil {
		panic("app: QuoteService requires a store and a session store")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.IntN == nil {
		cfg.IntN = rand.IntN
	}

	return &QuoteService{
		categories: domain.NewCategoryIndex(nil),
		selected:   domain.CategoryAll,
		store:      cfg.Store,
		session:    cfg.Session,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		now:        cfg.Now,
		intN:       cfg.IntN,
	}
}

// Init loads the persisted repository, seeds the defaults when it is empty,
// and restores the selected category and the last viewed quote.
func (s *QuoteService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	s.quotes = quotes
	s.trackIDsLocked(quotes)

	if len(s.quotes) == 0 {
		if err := s.commitLocked(ctx, domain.DefaultQuotes()); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "seeded default quotes", slog.Int("count", len(s.quotes)))
	} else {
		s.categories.Rebuild(s.quotes)
	}

	s.selected = domain.CategoryAll
	if raw, ok, err := s.store.Get(ctx, ports.KeySelectedCategory); err != nil {
		return fmt.Errorf("loading selected category: %w", err)
	} else if ok && s.categories.IsSelectable(string(raw)) {
		s.selected = string(raw)
	}

	if raw, ok, err := s.session.Get(ctx, ports.KeyLastViewedQuote); err != nil {
		return fmt.Errorf("loading last viewed quote: %w", err)
	} else if ok {
		s.lastViewed = string(raw)
	}

	if raw, ok, err := s.store.Get(ctx, ports.KeyLastSync); err == nil && ok {
		if at, parseErr := time.Parse(time.RFC3339Nano, string(raw)); parseErr == nil {
			s.lastSync = at
		}
	}

	s.logger.InfoContext(ctx, "quote repository loaded",
		slog.Int("quotes", len(s.quotes)),
		slog.Int("categories", s.categories.Len()),
		slog.String("selected_category", s.selected),
	)

	return nil
}

// SeedDefaults fills an empty repository with the built-in quotes.
// A non-empty repository is left alone.
func (s *QuoteService) SeedDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.quotes) > 0 {
		return nil
	}

	return s.commitLocked(ctx, domain.DefaultQuotes())
}

// Add validates and appends a quote with a freshly assigned ID, then
// publishes it when a publisher is configured. A failed publish is logged and
// reported in the result; the local add stands.
func (s *QuoteService) Add(ctx context.Context, text, category string) (AddResult, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return AddResult{}, err
	}

	s.mu.Lock()

	q = q.WithID(s.nextIDLocked())

	next := make([]domain.Quote, len(s.quotes), len(s.quotes)+1)
	copy(next, s.quotes)
	next = append(next, q)

	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return AddResult{}, err
	}

	s.mu.Unlock()

	s.logger.InfoContext(ctx, "quote added",
		slog.Int64("quote_id", *q.ID),
		slog.String("category", q.Category),
	)

	result := AddResult{Quote: q}
	if s.publisher == nil {
		return result, nil
	}

	if err := s.publisher.PublishQuote(ctx, q); err != nil {
		s.logger.WarnContext(ctx, "failed to publish quote",
			slog.Int64("quote_id", *q.ID),
			slog.Any("error", err),
		)

		result.PublishErr = err

		return result, nil
	}

	result.Published = true

	return result, nil
}

// All returns a copy of every quote in insertion order.
func (s *QuoteService) All(_ context.Context) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.FilterByCategory(s.quotes, domain.CategoryAll)
}

// ByCategory returns the quotes in category label. The "all" sentinel
// returns every quote.
func (s *QuoteService) ByCategory(_ context.Context, label string) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.FilterByCategory(s.quotes, strings.TrimSpace(label))
}

// Categories returns the distinct categories in ascending order.
func (s *QuoteService) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.categories.Categories()
}

// Random draws one quote uniformly from category label and remembers it as
// the last viewed quote. An empty label uses the selected category.
func (s *QuoteService) Random(ctx context.Context, label string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label = strings.TrimSpace(label)
	if label == "" {
		label = s.selected
	}

	candidates := domain.FilterByCategory(s.quotes, label)
	if len(candidates) == 0 {
		return domain.Quote{}, ErrNoQuotes
	}

	q := candidates[s.intN(len(candidates))]
	marker := q.Format()

	if err := s.session.Set(ctx, ports.KeyLastViewedQuote, []byte(marker)); err != nil {
		return domain.Quote{}, fmt.Errorf("saving last viewed quote: %w", err)
	}

	s.lastViewed = marker

	return q, nil
}

// SelectCategory persists label as the active filter. It must be a known
// category or the "all" sentinel.
func (s *QuoteService) SelectCategory(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categories.IsSelectable(label) {
		return domain.NewNotFoundError("category", label)
	}

	if err := s.store.Set(ctx, ports.KeySelectedCategory, []byte(label)); err != nil {
		return fmt.Errorf("saving selected category: %w", err)
	}

	s.selected = label

	return nil
}

// SelectedCategory returns the active filter label.
func (s *QuoteService) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// LastViewed returns the last displayed quote, formatted, and whether one
// has been shown in this session.
func (s *QuoteService) LastViewed(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastViewed, s.lastViewed != ""
}

// Import upserts the well-formed quotes of a JSON array and returns how many
// were accepted. Data that is not a JSON array is rejected with no change.
func (s *QuoteService) Import(ctx context.Context, data []byte) (int, error) {
	incoming, err := domain.DecodeQuotes(data)
	if err != nil {
		return 0, &domain.ValidationError{Field: "file", Message: "must be a JSON array of quotes"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := domain.Upsert(s.quotes, incoming)
	if !domain.EqualQuotes(merged, s.quotes) {
		if err := s.commitLocked(ctx, merged); err != nil {
			return 0, err
		}
	}

	s.trackIDsLocked(incoming)

	s.logger.InfoContext(ctx, "quotes imported",
		slog.Int("accepted", len(incoming)),
		slog.Int("total", len(s.quotes)),
	)

	return len(incoming), nil
}

// Export returns every quote as a pretty-printed JSON array.
func (s *QuoteService) Export(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ExportQuotes(s.quotes)
}

// ApplyRemote merges a remote batch into the current repository, remote
// winning by ID. The merge is computed under the writer lock against the
// latest state, so writes made while the batch was being fetched survive.
// It reports whether the repository changed.
func (s *QuoteService) ApplyRemote(ctx context.Context, remote []domain.Quote) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := domain.Merge(remote, s.quotes)
	if domain.EqualQuotes(merged, s.quotes) {
		return false, nil
	}

	if err := s.commitLocked(ctx, merged); err != nil {
		return false, err
	}

	s.trackIDsLocked(remote)

	return true, nil
}

// RecordSync persists the time of the last successful reconciliation.
func (s *QuoteService) RecordSync(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, ports.KeyLastSync, []byte(at.UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("saving last sync time: %w", err)
	}

	s.lastSync = at

	return nil
}

// LastSync returns the time of the last successful reconciliation, zero if none.
func (s *QuoteService) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastSync
}

// Version returns the repository version. It increases on every mutation.
func (s *QuoteService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Len returns the number of quotes in the repository.
func (s *QuoteService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// loadLocked reads the persisted snapshot. A snapshot that does not parse is
// logged and treated as empty.
func (s *QuoteService) loadLocked(ctx context.Context) ([]domain.Quote, error) {
	raw, ok, err := s.store.Get(ctx, ports.KeyQuotes)
	if err != nil {
		return nil, fmt.Errorf("loading quotes: %w", err)
	}

	if !ok {
		return nil, nil
	}

	quotes, err := domain.DecodeQuotes(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable quote snapshot", slog.Any("error", err))
		return nil, nil
	}

	return quotes, nil
}

// commitLocked persists quotes and, only once that succeeds, installs them as
// the current state.
func (s *QuoteService) commitLocked(ctx context.Context, quotes []domain.Quote) error {
	data, err := domain.EncodeQuotes(quotes)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, ports.KeyQuotes, data); err != nil {
		return fmt.Errorf("saving quotes: %w: %w", domain.ErrUnavailable, err)
	}

	s.quotes = quotes
	s.categories.Rebuild(quotes)
	s.version++

	if !s.categories.IsSelectable(s.selected) {
		s.selected = domain.CategoryAll
	}

	return nil
}

// nextIDLocked returns the current time in milliseconds, or last+1 when the
// clock has not moved past the last issued ID.
func (s *QuoteService) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}

	s.lastID = id

	return id
}

func (s *QuoteService) trackIDsLocked(quotes []domain.Quote) {
	for _, q := range quotes {
		if q.HasID() && *q.ID > s.lastID {
			s.lastID = *q.ID
		}
	}
}

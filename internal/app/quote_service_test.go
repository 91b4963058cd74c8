package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(id int64) *int64 { return &id }

// fixedClock returns a clock frozen at the given unix millisecond.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

type testEnv struct {
	store   *memory.Store
	session *memory.Store
	svc     *QuoteService
}

func newTestEnv(t *testing.T, opts ...func(*QuoteServiceConfig)) *testEnv {
	t.Helper()

	env := &testEnv{store: memory.NewStore(), session: memory.NewStore()}

	cfg := QuoteServiceConfig{
		Store:   env.store,
		Session: env.session,
		Logger:  discardLogger(),
		Now:     fixedClock(1_700_000_000_000),
		IntN:    func(int) int { return 0 },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	env.svc = NewQuoteService(cfg)

	return env
}

func (e *testEnv) seed(t *testing.T, quotes []domain.Quote) {
	t.Helper()

	data, err := domain.EncodeQuotes(quotes)
	require.NoError(t, err)
	require.NoError(t, e.store.Set(context.Background(), ports.KeyQuotes, data))
}

func (e *testEnv) persisted(t *testing.T) []domain.Quote {
	t.Helper()

	raw, ok, err := e.store.Get(context.Background(), ports.KeyQuotes)
	require.NoError(t, err)
	require.True(t, ok)

	quotes, err := domain.DecodeQuotes(raw)
	require.NoError(t, err)

	return quotes
}

func TestNewQuoteService_PanicsWithoutStores(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Session: memory.NewStore()})
	})
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{Store: memory.NewStore()})
	})
}

func TestQuoteService_InitSeedsDefaults(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.svc.Init(context.Background()))

	assert.Equal(t, domain.DefaultQuotes(), env.svc.All(context.Background()))
	assert.Equal(t, []string{"Happiness", "Life", "Motivation"}, env.svc.Categories())
	assert.Equal(t, domain.CategoryAll, env.svc.SelectedCategory())
	assert.Equal(t, domain.DefaultQuotes(), env.persisted(t))
	assert.Equal(t, uint64(1), env.svc.Version())
}

func TestQuoteService_InitLoadsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []domain.Quote{{ID: ptr(7), Text: "Stay hungry.", Category: "Work"}})
	require.NoError(t, env.store.Set(context.Background(), ports.KeySelectedCategory, []byte("Work")))
	require.NoError(t, env.session.Set(context.Background(), ports.KeyLastViewedQuote, []byte(`"Stay hungry." — [Work]`)))

	require.NoError(t, env.svc.Init(context.Background()))

	assert.Equal(t, 1, env.svc.Len())
	assert.Equal(t, "Work", env.svc.SelectedCategory())

	marker, ok := env.svc.LastViewed(context.Background())
	assert.True(t, ok)
	assert.Equal(t, `"Stay hungry." — [Work]`, marker)
	assert.Equal(t, uint64(0), env.svc.Version())
}

func TestQuoteService_InitCorruptSnapshotSeedsDefaults(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(context.Background(), ports.KeyQuotes, []byte("{not json")))

	require.NoError(t, env.svc.Init(context.Background()))

	assert.Len(t, env.svc.All(context.Background()), 3)
}

func TestQuoteService_InitUnknownSelectionFallsBackToAll(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(context.Background(), ports.KeySelectedCategory, []byte("Gone")))

	require.NoError(t, env.svc.Init(context.Background()))

	assert.Equal(t, domain.CategoryAll, env.svc.SelectedCategory())
}

func TestQuoteService_InitStoreFailure(t *testing.T) {
	store := mocks.NewMockKeyValueStore(t)
	store.On("Get", mock.Anything, ports.KeyQuotes).Return(nil, false, errors.New("disk gone"))

	svc := NewQuoteService(QuoteServiceConfig{Store: store, Session: memory.NewStore(), Logger: discardLogger()})

	err := svc.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestQuoteService_SeedDefaultsOnlyWhenEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []domain.Quote{{Text: "Mine", Category: "X"}})
	require.NoError(t, env.svc.Init(context.Background()))

	require.NoError(t, env.svc.SeedDefaults(context.Background()))

	assert.Equal(t, 1, env.svc.Len())
}

func TestQuoteService_Add(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	result, err := env.svc.Add(context.Background(), "  Be curious.  ", " Learning ")
	require.NoError(t, err)

	assert.Equal(t, domain.Quote{ID: ptr(1_700_000_000_000), Text: "Be curious.", Category: "Learning"}, result.Quote)
	assert.False(t, result.Published)
	assert.NoError(t, result.PublishErr)

	assert.Equal(t, 4, env.svc.Len())
	assert.Contains(t, env.svc.Categories(), "Learning")
	assert.Equal(t, result.Quote, env.persisted(t)[3])
}

func TestQuoteService_AddValidation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		field    string
	}{
		{"empty text", "", "X", "text"},
		{"blank text", "   ", "X", "text"},
		{"empty category", "Hello", "", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			require.NoError(t, env.svc.Init(context.Background()))
			version := env.svc.Version()

			_, err := env.svc.Add(context.Background(), tt.text, tt.category)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)

			assert.Equal(t, 3, env.svc.Len())
			assert.Equal(t, version, env.svc.Version())
		})
	}
}

func TestQuoteService_AddAssignsIncreasingIDs(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	first, err := env.svc.Add(context.Background(), "one", "X")
	require.NoError(t, err)

	second, err := env.svc.Add(context.Background(), "two", "X")
	require.NoError(t, err)

	assert.Equal(t, *first.Quote.ID+1, *second.Quote.ID)
}

func TestQuoteService_AddPersistFailureLeavesStateUnchanged(t *testing.T) {
	store := mocks.NewMockKeyValueStore(t)
	store.On("Get", mock.Anything, ports.KeyQuotes).Return([]byte(`[{"text":"a","category":"X"}]`), true, nil)
	store.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	store.On("Set", mock.Anything, ports.KeyQuotes, mock.Anything).Return(errors.New("read-only"))

	svc := NewQuoteService(QuoteServiceConfig{Store: store, Session: memory.NewStore(), Logger: discardLogger()})
	require.NoError(t, svc.Init(context.Background()))

	_, err := svc.Add(context.Background(), "b", "Y")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	assert.Equal(t, 1, svc.Len())
	assert.NotContains(t, svc.Categories(), "Y")
}

func TestQuoteService_AddPublishes(t *testing.T) {
	publisher := mocks.NewMockQuotePublisher(t)
	publisher.On("PublishQuote", mock.Anything, mock.MatchedBy(func(q domain.Quote) bool {
		return q.Text == "Ship it." && q.HasID()
	})).Return(nil).Once()

	env := newTestEnv(t, func(cfg *QuoteServiceConfig) { cfg.Publisher = publisher })
	require.NoError(t, env.svc.Init(context.Background()))

	result, err := env.svc.Add(context.Background(), "Ship it.", "Work")
	require.NoError(t, err)
	assert.True(t, result.Published)
}

func TestQuoteService_AddPublishFailureKeepsQuote(t *testing.T) {
	publisher := mocks.NewMockQuotePublisher(t)
	publisher.On("PublishQuote", mock.Anything, mock.Anything).
		Return(domain.NewUnavailableError("quote-source", "timeout")).Once()

	env := newTestEnv(t, func(cfg *QuoteServiceConfig) { cfg.Publisher = publisher })
	require.NoError(t, env.svc.Init(context.Background()))

	result, err := env.svc.Add(context.Background(), "Ship it.", "Work")
	require.NoError(t, err)

	assert.False(t, result.Published)
	assert.True(t, domain.IsUnavailable(result.PublishErr))
	assert.Equal(t, 4, env.svc.Len())
}

func TestQuoteService_ByCategory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	life := env.svc.ByCategory(context.Background(), "Life")
	require.Len(t, life, 1)
	assert.Equal(t, "Life", life[0].Category)

	assert.Len(t, env.svc.ByCategory(context.Background(), domain.CategoryAll), 3)
	assert.Empty(t, env.svc.ByCategory(context.Background(), "Nope"))
}

func TestQuoteService_AllReturnsCopy(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	quotes := env.svc.All(context.Background())
	quotes[0].Text = "mutated"

	assert.NotEqual(t, "mutated", env.svc.All(context.Background())[0].Text)
}

func TestQuoteService_Random(t *testing.T) {
	env := newTestEnv(t, func(cfg *QuoteServiceConfig) {
		cfg.IntN = func(n int) int { return n - 1 }
	})
	require.NoError(t, env.svc.Init(context.Background()))

	q, err := env.svc.Random(context.Background(), domain.CategoryAll)
	require.NoError(t, err)
	assert.Equal(t, "Happiness", q.Category)

	marker, ok := env.svc.LastViewed(context.Background())
	require.True(t, ok)
	assert.Equal(t, q.Format(), marker)

	stored, found, err := env.session.Get(context.Background(), ports.KeyLastViewedQuote)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, marker, string(stored))
}

func TestQuoteService_RandomUsesSelectedCategory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))
	require.NoError(t, env.svc.SelectCategory(context.Background(), "Life"))

	q, err := env.svc.Random(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Life", q.Category)
}

func TestQuoteService_RandomNoMatch(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	_, err := env.svc.Random(context.Background(), "Nope")
	require.ErrorIs(t, err, ErrNoQuotes)
	assert.True(t, domain.IsNotFound(err))

	_, ok := env.svc.LastViewed(context.Background())
	assert.False(t, ok)
}

func TestQuoteService_SelectCategory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	require.NoError(t, env.svc.SelectCategory(context.Background(), " Motivation "))
	assert.Equal(t, "Motivation", env.svc.SelectedCategory())

	raw, ok, err := env.store.Get(context.Background(), ports.KeySelectedCategory)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Motivation", string(raw))

	require.NoError(t, env.svc.SelectCategory(context.Background(), domain.CategoryAll))

	err = env.svc.SelectCategory(context.Background(), "Unknown")
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, domain.CategoryAll, env.svc.SelectedCategory())
}

func TestQuoteService_Import(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []domain.Quote{{ID: ptr(1), Text: "old", Category: "X"}})
	require.NoError(t, env.svc.Init(context.Background()))

	data := []byte(`[
		{"id": 1, "text": "new", "category": "X"},
		{"text": "fresh", "category": "Y"},
		{"text": 42, "category": "Y"},
		"garbage",
		{"id": 9, "text": "nine", "category": "Z"}
	]`)

	n, err := env.svc.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := []domain.Quote{
		{ID: ptr(1), Text: "new", Category: "X"},
		{Text: "fresh", Category: "Y"},
		{ID: ptr(9), Text: "nine", Category: "Z"},
	}
	if diff := cmp.Diff(want, env.svc.All(context.Background())); diff != "" {
		t.Errorf("repository mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"X", "Y", "Z"}, env.svc.Categories())
	assert.Equal(t, want, env.persisted(t))
}

func TestQuoteService_ImportRejectsNonArray(t *testing.T) {
	for _, data := range []string{`{"text":"a","category":"b"}`, `not json`, ``} {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Init(context.Background()))
		version := env.svc.Version()

		_, err := env.svc.Import(context.Background(), []byte(data))
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, version, env.svc.Version())
	}
}

func TestQuoteService_ImportIsIdempotentForIDLessQuotes(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	data := []byte(`[{"text":"Life is what happens when you're busy making other plans.","category":"Life"}]`)

	n, err := env.svc.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, env.svc.Len())
}

func TestQuoteService_ExportImportRoundTrip(t *testing.T) {
	source := newTestEnv(t)
	require.NoError(t, source.svc.Init(context.Background()))
	_, err := source.svc.Add(context.Background(), "Keep going.", "Motivation")
	require.NoError(t, err)

	exported, err := source.svc.Export(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(exported), "\n  {")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(exported, &decoded))
	assert.Len(t, decoded, 4)

	target := newTestEnv(t)
	target.seed(t, []domain.Quote{})
	require.NoError(t, target.svc.Init(context.Background()))

	_, err = target.svc.Import(context.Background(), exported)
	require.NoError(t, err)

	if diff := cmp.Diff(source.svc.All(context.Background()), target.svc.All(context.Background())); diff != "" {
		t.Errorf("round trip mismatch (-source +target):\n%s", diff)
	}
}

func TestQuoteService_ApplyRemote(t *testing.T) {
	tests := []struct {
		name        string
		local       []domain.Quote
		remote      []domain.Quote
		want        []domain.Quote
		wantChanged bool
	}{
		{
			name:        "remote wins on shared id",
			local:       []domain.Quote{{ID: ptr(1), Text: "A", Category: "X"}},
			remote:      []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			want:        []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			wantChanged: true,
		},
		{
			name:   "local-only survives after remote",
			local:  []domain.Quote{{ID: ptr(2), Text: "A", Category: "X"}},
			remote: []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			want: []domain.Quote{
				{ID: ptr(1), Text: "B", Category: "Server"},
				{ID: ptr(2), Text: "A", Category: "X"},
			},
			wantChanged: true,
		},
		{
			name:        "identical result is not persisted",
			local:       []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			remote:      []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			want:        []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}},
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.seed(t, tt.local)
			require.NoError(t, env.svc.Init(context.Background()))

			changed, err := env.svc.ApplyRemote(context.Background(), tt.remote)
			require.NoError(t, err)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, env.svc.All(context.Background()))
			assert.Equal(t, tt.want, env.persisted(t))
		})
	}
}

func TestQuoteService_ApplyRemoteResetsVanishedSelection(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, []domain.Quote{{ID: ptr(1), Text: "A", Category: "X"}})
	require.NoError(t, env.svc.Init(context.Background()))
	require.NoError(t, env.svc.SelectCategory(context.Background(), "X"))

	_, err := env.svc.ApplyRemote(context.Background(), []domain.Quote{{ID: ptr(1), Text: "B", Category: "Server"}})
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryAll, env.svc.SelectedCategory())
}

func TestQuoteService_RecordSync(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, env.svc.RecordSync(context.Background(), at))
	assert.True(t, at.Equal(env.svc.LastSync()))

	reloaded := NewQuoteService(QuoteServiceConfig{Store: env.store, Session: env.session, Logger: discardLogger()})
	require.NoError(t, reloaded.Init(context.Background()))
	assert.True(t, at.Equal(reloaded.LastSync()))
}

func TestQuoteService_ConcurrentAdds(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.Init(context.Background()))

	const writers = 20

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := env.svc.Add(context.Background(), "parallel", "Load")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	quotes := env.svc.All(context.Background())
	assert.Len(t, quotes, 3+writers)

	seen := make(map[int64]bool)
	for _, q := range quotes[3:] {
		require.True(t, q.HasID())
		assert.False(t, seen[*q.ID], "duplicate id %d", *q.ID)
		seen[*q.ID] = true
	}
}

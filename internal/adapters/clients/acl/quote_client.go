package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

const (
	postsPath = "/posts"

	// DefaultCategory is assigned to remote records when none is configured.
	DefaultCategory = "Server"
)

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client to use for requests.
	// Its BaseURL points at the placeholder API root.
	Client *clients.Client

	// Category is stamped on every fetched record.
	Category string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteClient reads and publishes quotes through the remote posts endpoint.
type QuoteClient struct {
	BaseAdapter

	category string
	logger   *slog.Logger
}

// Compile-time interface checks.
var (
	_ ports.QuoteSource    = (*QuoteClient)(nil)
	_ ports.QuotePublisher = (*QuoteClient)(nil)
	_ ports.HealthChecker  = (*QuoteClient)(nil)
)

// NewQuoteClient creates a new quote client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	category := strings.TrimSpace(cfg.Category)
	if category == "" {
		category = DefaultCategory
	}

	return &QuoteClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Client.ServiceName()),
		category:    category,
		logger:      logger,
	}
}

// remotePost is the record shape served by the placeholder API.
type remotePost struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// publishResponse is the echo returned after a POST. Only its presence matters.
type publishResponse struct {
	ID int64 `json:"id"`
}

// FetchQuotes returns the first limit remote records as quotes.
// A non-positive limit returns every record. A record without a usable id or
// title fails the whole batch, so a partial page never reaches the merge.
func (c *QuoteClient) FetchQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", postsPath))

	body, err := c.Get(ctx, postsPath, "fetch quotes")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]remotePost](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	batch := *posts
	if limit > 0 && len(batch) > limit {
		batch = batch[:limit]
	}

	quotes, err := TranslateSlice(batch, c.translate)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), "malformed remote record: "+err.Error())
	}

	c.logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("received", len(*posts)),
		slog.Int("accepted", len(quotes)),
	)

	return quotes, nil
}

// translate converts one remote post into a quote in the configured category.
func (c *QuoteClient) translate(p *remotePost) (domain.Quote, error) {
	if err := ValidatePositive(p.ID, "id"); err != nil {
		return domain.Quote{}, err
	}

	title := strings.TrimSpace(p.Title)
	if err := ValidateRequired(title, "title"); err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{Text: title, Category: c.category}.WithID(p.ID), nil
}

// PublishQuote posts q to the remote endpoint and expects a JSON echo back.
func (c *QuoteClient) PublishQuote(ctx context.Context, q domain.Quote) error {
	body, err := c.PostJSON(ctx, postsPath, q, "publish quote")
	if err != nil {
		return err
	}

	resp, err := DecodeResponse[publishResponse](body)
	if err != nil {
		return domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	c.logger.DebugContext(ctx, "published quote",
		slog.String("category", q.Category),
		slog.Int64("remote_id", resp.ID),
	)

	return nil
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return "quote-source"
}

// Check fetches a single record to verify the endpoint answers. An open
// circuit reports unhealthy without spending a request.
func (c *QuoteClient) Check(ctx context.Context) error {
	if state := c.client.CircuitState(); state == clients.StateOpen {
		return domain.NewUnavailableError(c.ServiceName(), "circuit breaker "+state.String())
	}

	body, err := c.Get(ctx, postsPath+"?_limit=1", "health check")
	if err != nil {
		return err
	}

	if _, err := DecodeResponse[[]remotePost](body); err != nil {
		return fmt.Errorf("quote source returned an unreadable body: %w", err)
	}

	return nil
}

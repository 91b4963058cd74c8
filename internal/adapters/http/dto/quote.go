package dto

import (
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Field limits for user-entered quotes.
const (
	MaxTextLength     = 2000
	MaxCategoryLength = 64
)

// QuoteResponse is the wire form of a quote.
type QuoteResponse struct {
	ID       *int64 `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse maps a domain quote to its wire form.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Category: q.Category}
}

// NewQuoteResponses maps a quote list, never returning nil.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// QuoteListResponse is returned by GET /quotes.
type QuoteListResponse struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Quotes   []QuoteResponse `json:"quotes"`
}

// ListQuotesQuery holds the optional category filter.
type ListQuotesQuery struct {
	Category string `form:"category" validate:"omitempty,max=64,singleline"`
}

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=2000"`
	Category string `json:"category" validate:"required,notempty,max=64,singleline"`
}

// CreateQuoteResponse is returned by POST /quotes.
type CreateQuoteResponse struct {
	Quote        QuoteResponse `json:"quote"`
	Published    bool          `json:"published"`
	PublishError string        `json:"publishError,omitempty"`
}

// RandomQuoteResponse is returned by GET /quotes/random.
type RandomQuoteResponse struct {
	Quote     QuoteResponse `json:"quote"`
	Formatted string        `json:"formatted"`
}

// LastViewedResponse is returned by GET /quotes/last-viewed.
type LastViewedResponse struct {
	Quote string `json:"quote"`
}

// ImportResponse is returned by POST /quotes/import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// CategoriesResponse is returned by GET /categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// SelectedCategoryResponse is returned by the selected category endpoints.
type SelectedCategoryResponse struct {
	Category string `json:"category"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,notempty,max=64,singleline"`
}

// SyncReportResponse is the wire form of one reconciliation pass.
type SyncReportResponse struct {
	Outcome    string    `json:"outcome"`
	Fetched    int       `json:"fetched"`
	Total      int       `json:"total"`
	Version    uint64    `json:"version"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	FailedStep string    `json:"failedStep,omitempty"`
}

// NewSyncReportResponse maps a sync report to its wire form.
func NewSyncReportResponse(r ports.SyncReport) SyncReportResponse {
	return SyncReportResponse{
		Outcome:    string(r.Outcome),
		Fetched:    r.Fetched,
		Total:      r.Total,
		Version:    r.Version,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Error:      r.Error,
		FailedStep: r.FailedStep,
	}
}

// SyncStatusResponse is returned by GET /sync/status.
type SyncStatusResponse struct {
	Enabled    bool                `json:"enabled"`
	Runs       int                 `json:"runs"`
	Failures   int                 `json:"failures"`
	LastSyncAt *time.Time          `json:"lastSyncAt,omitempty"`
	Last       *SyncReportResponse `json:"last,omitempty"`
}

// FormField describes one input of a declarative form.
type FormField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	MaxLength   int    `json:"maxLength"`
}

// FormResponse describes a form a client can render and submit.
type FormResponse struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Action string      `json:"action"`
	Submit string      `json:"submit"`
	Fields []FormField `json:"fields"`
}

// AddQuoteForm returns the description of the add-quote form, posting to action.
func AddQuoteForm(action string) FormResponse {
	return FormResponse{
		ID:     "add-quote",
		Method: "POST",
		Action: action,
		Submit: "Add Quote",
		Fields: []FormField{
			{Name: "text", Label: "Quote", Type: "text", Placeholder: "Enter a new quote", Required: true, MaxLength: MaxTextLength},
			{Name: "category", Label: "Category", Type: "text", Placeholder: "Enter quote category", Required: true, MaxLength: MaxCategoryLength},
		},
	}
}

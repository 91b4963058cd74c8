package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// ExportFilename is the attachment name used by GET /quotes/export.
const ExportFilename = "quotes.json"

// QuoteHandler handles the quote and category endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	if service == nil {
		panic("handlers: QuoteHandler requires a quote service")
	}

	return &QuoteHandler{service: service}
}

// ListQuotes handles GET /quotes. The optional category query filters the
// list; "all" or no category returns every quote.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var query dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	label := strings.TrimSpace(query.Category)
	if label == "" {
		label = domain.CategoryAll
	}

	quotes := h.service.ByCategory(c.Request.Context(), label)

	c.JSON(http.StatusOK, dto.QuoteListResponse{
		Category: label,
		Count:    len(quotes),
		Quotes:   dto.NewQuoteResponses(quotes),
	})
}

// CreateQuote handles POST /quotes.
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.Add(c.Request.Context(), req.Text, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.CreateQuoteResponse{
		Quote:     dto.NewQuoteResponse(result.Quote),
		Published: result.Published,
	}
	if result.PublishErr != nil {
		resp.PublishError = result.PublishErr.Error()
	}

	c.JSON(http.StatusCreated, resp)
}

// RandomQuote handles GET /quotes/random. Without a category query the
// selected category is used.
func (h *QuoteHandler) RandomQuote(c *gin.Context) {
	var query dto.ListQuotesQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		dto.HandleError(c, err)
		return
	}

	q, err := h.service.Random(c.Request.Context(), query.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RandomQuoteResponse{
		Quote:     dto.NewQuoteResponse(q),
		Formatted: q.Format(),
	})
}

// LastViewed handles GET /quotes/last-viewed.
func (h *QuoteHandler) LastViewed(c *gin.Context) {
	marker, ok := h.service.LastViewed(c.Request.Context())
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("last viewed quote", ""))
		return
	}

	c.JSON(http.StatusOK, dto.LastViewedResponse{Quote: marker})
}

// ExportQuotes handles GET /quotes/export as a quotes.json attachment.
func (h *QuoteHandler) ExportQuotes(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportQuotes handles POST /quotes/import. The body is a JSON array of quotes.
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	n, err := h.service.Import(c.Request.Context(), data)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Imported: n, Total: h.service.Len()})
}

// QuoteForm handles GET /quotes/form with the add-quote form description.
func (h *QuoteHandler) QuoteForm(c *gin.Context) {
	action := strings.TrimSuffix(c.FullPath(), "/form")
	c.JSON(http.StatusOK, dto.AddQuoteForm(action))
}

// ListCategories handles GET /categories.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CategoriesResponse{
		Categories: h.service.Categories(),
		Selected:   h.service.SelectedCategory(),
	})
}

// SelectedCategory handles GET /categories/selected.
func (h *QuoteHandler) SelectedCategory(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SelectedCategoryResponse{Category: h.service.SelectedCategory()})
}

// SelectCategory handles PUT /categories/selected.
func (h *QuoteHandler) SelectCategory(c *gin.Context) {
	var req dto.SelectCategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	if err := h.service.SelectCategory(c.Request.Context(), req.Category); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SelectedCategoryResponse{Category: h.service.SelectedCategory()})
}

// RegisterRoutes registers the quote and category routes on rg.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/last-viewed", h.LastViewed)
	quotes.GET("/export", h.ExportQuotes)
	quotes.POST("/import", h.ImportQuotes)
	quotes.GET("/form", h.QuoteForm)

	categories := rg.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/selected", h.SelectedCategory)
	categories.PUT("/selected", h.SelectCategory)
}

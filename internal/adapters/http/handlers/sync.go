package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Syncer runs one reconciliation pass on demand.
type Syncer interface {
	SyncOnce(ctx context.Context) (ports.SyncReport, error)
}

// SyncHandler exposes the reconciler over HTTP.
type SyncHandler struct {
	syncer  Syncer
	status  *app.StatusObserver
	service *app.QuoteService
}

// NewSyncHandler creates a sync handler. A nil syncer means sync is disabled:
// status is still served and POST /sync answers 503.
func NewSyncHandler(syncer Syncer, status *app.StatusObserver, service *app.QuoteService) *SyncHandler {
	if status == nil {
		status = app.NewStatusObserver()
	}

	return &SyncHandler{syncer: syncer, status: status, service: service}
}

// SyncNow handles POST /sync. A failed pass answers with the mapped error;
// the failure is also visible in GET /sync/status.
func (h *SyncHandler) SyncNow(c *gin.Context) {
	if h.syncer == nil {
		dto.HandleErrorCode(c, dto.ErrorCodeUnavailable, "sync is disabled")
		return
	}

	report, err := h.syncer.SyncOnce(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncReportResponse(report))
}

// Status handles GET /sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	status := h.status.Status()

	resp := dto.SyncStatusResponse{
		Enabled:  h.syncer != nil,
		Runs:     status.Runs,
		Failures: status.Failures,
	}

	if status.Last != nil {
		last := dto.NewSyncReportResponse(*status.Last)
		resp.Last = &last
	}

	if h.service != nil {
		if at := h.service.LastSync(); !at.IsZero() {
			resp.LastSyncAt = &at
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the sync routes on rg.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.SyncNow)
	rg.GET("/sync/status", h.Status)
}

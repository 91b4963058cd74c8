package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

type fakeSyncer struct {
	status *app.StatusObserver
	report ports.SyncReport
	err    error
}

func (f *fakeSyncer) SyncOnce(ctx context.Context) (ports.SyncReport, error) {
	f.status.SyncCompleted(ctx, f.report)
	return f.report, f.err
}

func syncRouter(syncer Syncer, status *app.StatusObserver) *gin.Engine {
	engine := gin.New()
	NewSyncHandler(syncer, status, nil).RegisterRoutes(engine.Group("/api/v1"))

	return engine
}

func TestSyncHandler_SyncNow(t *testing.T) {
	status := app.NewStatusObserver()
	syncer := &fakeSyncer{
		status: status,
		report: ports.SyncReport{Outcome: ports.SyncUpdated, Fetched: 10, Total: 13, Duration: time.Second},
	}
	engine := syncRouter(syncer, status)

	w := do(engine, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.SyncReportResponse](t, w)
	assert.Equal(t, "updated", resp.Outcome)
	assert.Equal(t, int64(1000), resp.DurationMS)

	w = do(engine, http.MethodGet, "/api/v1/sync/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	statusResp := decode[dto.SyncStatusResponse](t, w)
	assert.True(t, statusResp.Enabled)
	assert.Equal(t, 1, statusResp.Runs)
	require.NotNil(t, statusResp.Last)
	assert.Equal(t, 13, statusResp.Last.Total)
}

func TestSyncHandler_SyncFailure(t *testing.T) {
	status := app.NewStatusObserver()
	syncer := &fakeSyncer{
		status: status,
		report: ports.SyncReport{Outcome: ports.SyncFailed, Error: "down"},
		err:    domain.NewUnavailableError("quote-source", "down"),
	}
	engine := syncRouter(syncer, status)

	w := do(engine, http.MethodPost, "/api/v1/sync", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(engine, http.MethodGet, "/api/v1/sync/status", "")
	assert.Equal(t, 1, decode[dto.SyncStatusResponse](t, w).Failures)
}

func TestSyncHandler_Disabled(t *testing.T) {
	engine := syncRouter(nil, nil)

	w := do(engine, http.MethodPost, "/api/v1/sync", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "sync is disabled")

	w = do(engine, http.MethodGet, "/api/v1/sync/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.SyncStatusResponse](t, w).Enabled)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/outbox"
	"github.com/RandySimanca/avicola/internal/service/reporting"
)

// ReportHandler exposes the aggregated financial views and sync status.
type ReportHandler struct {
	svc       *reporting.Service
	submitter *outbox.Submitter
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *reporting.Service, submitter *outbox.Submitter, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, submitter: submitter, logger: logger}
}

// GlobalSummary returns the full financial picture.
func (h *ReportHandler) GlobalSummary(c *gin.Context) {
	summary, err := h.svc.GlobalSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GlobalKPIs returns the operational headline figures.
func (h *ReportHandler) GlobalKPIs(c *gin.Context) {
	kpis, err := h.svc.GlobalKPIs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// SyncStatus reports how many queued operations still wait for replay.
func (h *ReportHandler) SyncStatus(c *gin.Context) {
	pending, err := h.submitter.Queue().PendingCount()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_operations": pending})
}

// ForceSync replays every pending queued operation immediately instead of
// waiting for the next scheduled run.
func (h *ReportHandler) ForceSync(c *gin.Context) {
	synced, failed, err := h.submitter.ReplayAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced, "failed": failed})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/domain/models"
	"github.com/RandySimanca/avicola/internal/outbox"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

// LedgerHandler exposes the transactional operations. Writes go through the
// submitter so that a network outage queues the intent instead of failing;
// queued requests answer 202 with no body.
type LedgerHandler struct {
	submitter *outbox.Submitter
	ledgerSvc *ledger.Service
	logger    *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(submitter *outbox.Submitter, ledgerSvc *ledger.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{submitter: submitter, ledgerSvc: ledgerSvc, logger: logger}
}

// sessionFrom recovers the session installed by the auth middleware.
func sessionFrom(c *gin.Context) models.Session {
	value, _ := c.Get(SessionKey)
	session, _ := value.(models.Session)
	return session
}

func (h *LedgerHandler) RecordDailyLog(c *gin.Context) {
	var req ledger.DailyLogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, queued, err := h.submitter.SubmitDailyLog(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LedgerHandler) UpdateDailyLog(c *gin.Context) {
	var req ledger.DailyLogUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ID = c.Param("id")

	record, queued, err := h.submitter.SubmitDailyLogUpdate(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *LedgerHandler) DeleteDailyLog(c *gin.Context) {
	queued, err := h.submitter.SubmitDailyLogDelete(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) RecordSale(c *gin.Context) {
	var req ledger.SaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, queued, err := h.submitter.SubmitSale(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LedgerHandler) UpdateSale(c *gin.Context) {
	var req ledger.SaleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ID = c.Param("id")

	record, queued, err := h.submitter.SubmitSaleUpdate(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *LedgerHandler) DeleteSale(c *gin.Context) {
	queued, err := h.submitter.SubmitSaleDelete(c.Request.Context(), sessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) RecordConsumption(c *gin.Context) {
	var req ledger.ConsumptionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, queued, err := h.submitter.SubmitConsumption(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *LedgerHandler) RecordExpense(c *gin.Context) {
	var req ledger.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, queued, err := h.submitter.SubmitExpense(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued {
		c.JSON(http.StatusAccepted, gin.H{"queued": true})
		return
	}
	c.JSON(http.StatusCreated, record)
}

// DeleteExpense is an administrative correction, applied online only.
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	if err := h.ledgerSvc.DeleteExpense(c.Request.Context(), sessionFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

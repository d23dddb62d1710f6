package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/service/registry"
)

// RegistryHandler exposes the CRUD surface: farms, sheds, batches, items and
// the read-only record listings.
type RegistryHandler struct {
	svc    *registry.Service
	logger *zap.Logger
}

// NewRegistryHandler constructs the HTTP handler adapter.
func NewRegistryHandler(svc *registry.Service, logger *zap.Logger) *RegistryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistryHandler{svc: svc, logger: logger}
}

func (h *RegistryHandler) CreateBatch(c *gin.Context) {
	var req registry.BatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

func (h *RegistryHandler) GetBatch(c *gin.Context) {
	batch, err := h.svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *RegistryHandler) ListBatches(c *gin.Context) {
	batches, err := h.svc.ListBatches(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (h *RegistryHandler) UpdateBatch(c *gin.Context) {
	var req registry.BatchUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := h.svc.UpdateBatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *RegistryHandler) FinalizeBatch(c *gin.Context) {
	batch, err := h.svc.FinalizeBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *RegistryHandler) DeleteBatch(c *gin.Context) {
	if err := h.svc.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) CreateItem(c *gin.Context) {
	var req registry.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *RegistryHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RegistryHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *RegistryHandler) UpdateItem(c *gin.Context) {
	var req registry.ItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RegistryHandler) DeleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) CreateFarm(c *gin.Context) {
	var req registry.FarmInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	farm, err := h.svc.CreateFarm(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

func (h *RegistryHandler) ListFarms(c *gin.Context) {
	farms, err := h.svc.ListFarms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, farms)
}

func (h *RegistryHandler) DeleteFarm(c *gin.Context) {
	if err := h.svc.DeleteFarm(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) CreateShed(c *gin.Context) {
	var req registry.ShedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	shed, err := h.svc.CreateShed(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shed)
}

func (h *RegistryHandler) ListSheds(c *gin.Context) {
	sheds, err := h.svc.ListSheds(c.Request.Context(), c.Query("farm_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheds)
}

func (h *RegistryHandler) DeleteShed(c *gin.Context) {
	if err := h.svc.DeleteShed(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistryHandler) ListSales(c *gin.Context) {
	sales, err := h.svc.ListSales(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *RegistryHandler) ListDailyLogs(c *gin.Context) {
	logs, err := h.svc.ListDailyLogs(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *RegistryHandler) ListExpenses(c *gin.Context) {
	expenses, err := h.svc.ListExpenses(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *RegistryHandler) ListConsumptions(c *gin.Context) {
	consumptions, err := h.svc.ListConsumptions(c.Request.Context(), c.Query("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, consumptions)
}

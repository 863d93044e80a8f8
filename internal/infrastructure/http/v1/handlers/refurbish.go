package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/refurbish"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// RefurbishHandler handles refurbishing batch endpoints.
type RefurbishHandler struct {
	*BaseHandler
	service *refurbish.Service
}

// NewRefurbishHandler creates a new refurbish handler.
func NewRefurbishHandler(base *BaseHandler, service *refurbish.Service) *RefurbishHandler {
	return &RefurbishHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateBatch handles POST /refurbish/batches
func (h *RefurbishHandler) CreateBatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	batch := refurbish.NewBatch(productID, req.SerialNumber)
	batch.ProducedQuantity = req.ProducedQuantity
	batch.Remarks = req.Remarks
	batch.CreatedBy = &userID

	if err := h.service.CreateBatch(ctx, batch); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, batch.ID.String())
}

// GetBatch handles GET /refurbish/batches/:id
func (h *RefurbishHandler) GetBatch(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	batch, err := h.service.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, batch)
}

// ListBatches handles GET /refurbish/batches
func (h *RefurbishHandler) ListBatches(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.ListBatches(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RecordUsage handles POST /refurbish/batches/:id/usages
func (h *RefurbishHandler) RecordUsage(c *gin.Context) {
	ctx := c.Request.Context()

	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordUsageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	componentID, err := id.Parse(req.ComponentID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid component id"))
		return
	}

	usage, err := h.service.RecordUsage(ctx, batchID, componentID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, usage)
}

// ListUsages handles GET /refurbish/batches/:id/usages
func (h *RefurbishHandler) ListUsages(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListUsages(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RegisterRoutes registers refurbish routes.
func (h *RefurbishHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/refurbish/batches")
	g.GET("", middleware.RequirePermission("inventory.view"), h.ListBatches)
	g.GET("/:id", middleware.RequirePermission("inventory.view"), h.GetBatch)
	g.GET("/:id/usages", middleware.RequirePermission("inventory.view"), h.ListUsages)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.CreateBatch)
	g.POST("/:id/usages", middleware.RequirePermission("inventory.edit"), h.RecordUsage)
}

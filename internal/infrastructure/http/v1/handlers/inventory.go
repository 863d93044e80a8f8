package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/inventory"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// InventoryHandler handles stock rollup endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Open handles POST /inventory
func (h *InventoryHandler) Open(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OpenInventoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	inv, err := h.service.Open(ctx, productID, req.OpeningStock)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, inv.ID.String())
}

// UpdateStock handles PUT /inventory/:id/stock
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	ctx := c.Request.Context()

	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInventoryStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.UpdateStock(ctx, inventoryID, req.OpeningStock, req.StockIn, req.StockOut)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// GetByProduct handles GET /inventory/product/:productId
func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	inv, err := h.service.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, inv)
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RecordDailyProduction handles POST /inventory/daily-production
func (h *InventoryHandler) RecordDailyProduction(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordDailyProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batchID, err := id.Parse(req.BatchID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batch id"))
		return
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	row := &inventory.DailyProduction{
		BatchID:      batchID,
		ProductID:    productID,
		Date:         req.Date,
		StockIn:      req.StockIn,
		StockOut:     req.StockOut,
		SalePrice:    req.SalePrice,
		MRP:          req.MRP,
		SerialNumber: req.SerialNumber,
	}

	if err := h.service.RecordDailyProduction(ctx, row); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, row.ID.String())
}

// ListDailyProduction handles GET /inventory/daily-production/:batchId
func (h *InventoryHandler) ListDailyProduction(c *gin.Context) {
	batchID, ok := h.ParseID(c, "batchId")
	if !ok {
		return
	}

	items, err := h.service.ListDailyProduction(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RegisterRoutes registers inventory routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/inventory")
	g.GET("", middleware.RequirePermission("inventory.view"), h.List)
	g.GET("/product/:productId", middleware.RequirePermission("inventory.view"), h.GetByProduct)
	g.GET("/daily-production/:batchId", middleware.RequirePermission("inventory.view"), h.ListDailyProduction)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.Open)
	g.PUT("/:id/stock", middleware.RequirePermission("inventory.edit"), h.UpdateStock)
	g.POST("/daily-production", middleware.RequirePermission("inventory.edit"), h.RecordDailyProduction)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/purchase"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// PurchaseHandler handles purchase order endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateOrder handles POST /purchases
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vendorID, err := id.Parse(req.VendorID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid vendor id"))
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	order := purchase.NewOrder(vendorID)
	order.Notes = req.Notes
	order.CreatedBy = &userID
	for _, it := range req.Items {
		componentID, err := id.Parse(it.ComponentID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid component id"))
			return
		}
		order.Items = append(order.Items, purchase.Item{
			ComponentID: componentID,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
		})
	}

	if err := h.service.CreateOrder(ctx, order); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// GetOrder handles GET /purchases/:id
func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// ListOrders handles GET /purchases
func (h *PurchaseHandler) ListOrders(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.ListOrders(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// Receive handles POST /purchases/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Receive(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// RecordPayment handles POST /purchases/:id/payments
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordVendorPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.service.RecordPayment(ctx, orderID, req.Amount, req.Mode, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, payment)
}

// ListPayments handles GET /purchases/:id/payments
func (h *PurchaseHandler) ListPayments(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RegisterRoutes registers purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchases")
	g.GET("", middleware.RequirePermission("inventory.view"), h.ListOrders)
	g.GET("/:id", middleware.RequirePermission("inventory.view"), h.GetOrder)
	g.GET("/:id/payments", middleware.RequirePermission("inventory.view"), h.ListPayments)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.CreateOrder)
	g.POST("/:id/receive", middleware.RequirePermission("inventory.edit"), h.Receive)
	g.POST("/:id/payments", middleware.RequirePermission("inventory.edit"), h.RecordPayment)
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/sales"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// SalesHandler handles sales order endpoints.
type SalesHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, service *sales.Service) *SalesHandler {
	return &SalesHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateOrder handles POST /orders
func (h *SalesHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer id"))
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	order := sales.NewOrder(customerID)
	order.Notes = req.Notes
	order.CreatedBy = &userID
	for _, it := range req.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id"))
			return
		}
		order.Items = append(order.Items, sales.Item{
			ProductID:       productID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			GSTPercent:      it.GSTPercent,
		})
	}

	if err := h.service.CreateOrder(ctx, order); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// GetOrder handles GET /orders/:id
func (h *SalesHandler) GetOrder(c *gin.Context) {
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

// ListOrders handles GET /orders
func (h *SalesHandler) ListOrders(c *gin.Context) {
	var query dto.OrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	filter := sales.ListFilter{
		From:   query.From,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.To != nil {
		// Listings treat "to" as inclusive of the named day.
		to := query.To.Add(24 * time.Hour)
		filter.To = &to
	}
	if query.CustomerID != nil {
		parsed, err := id.Parse(*query.CustomerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id"))
			return
		}
		filter.CustomerID = &parsed
	}
	if query.Status != nil {
		status := sales.Status(*query.Status)
		filter.Status = &status
	}
	if query.PaymentStatus != nil {
		ps := sales.PaymentStatus(*query.PaymentStatus)
		filter.PaymentStatus = &ps
	}

	items, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RecordPayment handles POST /orders/:id/payments
func (h *SalesHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
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

// ListPayments handles GET /orders/:id/payments
func (h *SalesHandler) ListPayments(c *gin.Context) {
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

// SyncPaymentStatus handles POST /orders/:id/sync-payment-status
func (h *SalesHandler) SyncPaymentStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.SyncPaymentStatus(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, order)
}

// GenerateInvoice handles POST /orders/:id/invoice
func (h *SalesHandler) GenerateInvoice(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.service.GenerateInvoice(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, invoice)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *SalesHandler) CancelOrder(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.CancelOrder(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order cancelled")
}

// RegisterRoutes registers sales routes.
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.GET("", middleware.RequirePermission("orders.view"), h.ListOrders)
	g.GET("/:id", middleware.RequirePermission("orders.view"), h.GetOrder)
	g.GET("/:id/payments", middleware.RequirePermission("orders.view"), h.ListPayments)
	g.POST("", middleware.RequirePermission("orders.add"), h.CreateOrder)
	g.POST("/:id/payments", middleware.RequirePermission("orders.add"), h.RecordPayment)
	g.POST("/:id/sync-payment-status", middleware.RequirePermission("orders.add"), h.SyncPaymentStatus)
	g.POST("/:id/invoice", middleware.RequirePermission("orders.add"), h.GenerateInvoice)
	g.POST("/:id/cancel", middleware.RequirePermission("orders.add"), h.CancelOrder)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/ledger"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// LedgerHandler handles customer ledger endpoints.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Append handles POST /customers/:id/ledger
func (h *LedgerHandler) Append(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AppendLedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := h.service.Append(ctx, customerID, req.Description, req.Debit, req.Credit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// Statement handles GET /customers/:id/ledger
func (h *LedgerHandler) Statement(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.Statement(c.Request.Context(), customerID, page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// Balance handles GET /customers/:id/balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BalanceResponse{
		CustomerID: customerID.String(),
		Balance:    balance,
	})
}

// RegisterRoutes registers ledger routes under the customer resource.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customers/:id")
	g.GET("/ledger", middleware.RequirePermission("accounts.view"), h.Statement)
	g.GET("/balance", middleware.RequirePermission("accounts.view"), h.Balance)
	g.POST("/ledger", middleware.RequirePermission("accounts.view"), h.Append)
}

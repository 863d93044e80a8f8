package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/catalogs/customer"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// CustomerHandler handles customer catalog endpoints.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	model := req.ToModel()
	if err := h.service.Create(ctx, model); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, model.ID.String())
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	model, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(model)
	if err := h.service.Update(ctx, model); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
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

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customers")
	g.GET("", middleware.RequirePermission("customers.view"), h.List)
	g.GET("/:id", middleware.RequirePermission("customers.view"), h.Get)
	g.POST("", middleware.RequirePermission("customers.add"), h.Create)
	g.PUT("/:id", middleware.RequirePermission("customers.add"), h.Update)
}

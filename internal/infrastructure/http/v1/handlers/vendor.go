package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/catalogs/vendor"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// VendorHandler handles vendor catalog endpoints.
type VendorHandler struct {
	*BaseHandler
	service *vendor.Service
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(base *BaseHandler, service *vendor.Service) *VendorHandler {
	return &VendorHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateVendorRequest
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

// Get handles GET /vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	vendorID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), vendorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
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

// RegisterRoutes registers vendor routes.
func (h *VendorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/vendors")
	g.GET("", middleware.RequirePermission("inventory.view"), h.List)
	g.GET("/:id", middleware.RequirePermission("inventory.view"), h.Get)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.Create)
}

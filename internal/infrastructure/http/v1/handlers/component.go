package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// ComponentHandler handles component catalog endpoints.
type ComponentHandler struct {
	*BaseHandler
	service *component.Service
}

// NewComponentHandler creates a new component handler.
func NewComponentHandler(base *BaseHandler, service *component.Service) *ComponentHandler {
	return &ComponentHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /components
func (h *ComponentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateComponentRequest
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

// Get handles GET /components/:id
func (h *ComponentHandler) Get(c *gin.Context) {
	componentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), componentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// Update handles PUT /components/:id
func (h *ComponentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	componentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateComponentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	model, err := h.service.GetByID(ctx, componentID)
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

// List handles GET /components
func (h *ComponentHandler) List(c *gin.Context) {
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

// RegisterRoutes registers component routes.
func (h *ComponentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/components")
	g.GET("", middleware.RequirePermission("inventory.view"), h.List)
	g.GET("/:id", middleware.RequirePermission("inventory.view"), h.Get)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.Create)
	g.PUT("/:id", middleware.RequirePermission("inventory.edit"), h.Update)
}

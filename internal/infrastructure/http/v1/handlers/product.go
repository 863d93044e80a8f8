package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/catalogs/product"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	categoryID, err := id.Parse(req.CategoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id"))
		return
	}

	model := req.ToModel(categoryID)
	if err := h.service.Create(ctx, model); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, model.ID.String())
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	model, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, model)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.ProductListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	filter := product.ListFilter{
		Type:   query.Type,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.CategoryID != nil {
		parsed, err := id.Parse(*query.CategoryID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid category id"))
			return
		}
		filter.CategoryID = &parsed
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// CreateCategory handles POST /product-categories
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	category := product.NewCategory(req.Name)
	if err := h.service.CreateCategory(ctx, category); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, category.ID.String())
}

// ListCategories handles GET /product-categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	items, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.GET("", middleware.RequirePermission("inventory.view"), h.List)
	g.GET("/:id", middleware.RequirePermission("inventory.view"), h.Get)
	g.POST("", middleware.RequirePermission("inventory.edit"), h.Create)

	cg := rg.Group("/product-categories")
	cg.GET("", middleware.RequirePermission("inventory.view"), h.ListCategories)
	cg.POST("", middleware.RequirePermission("inventory.edit"), h.CreateCategory)
}

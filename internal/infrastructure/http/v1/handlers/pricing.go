package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/entity"
	"refurbhq/internal/domain/pricing"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// PricingHandler handles discount rule endpoints.
type PricingHandler struct {
	*BaseHandler
	service *pricing.Service
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(base *BaseHandler, service *pricing.Service) *PricingHandler {
	return &PricingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateRule handles POST /pricing/rules
func (h *PricingHandler) CreateRule(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule := &pricing.Rule{
		BaseEntity:      entity.NewBaseEntity(),
		Name:            req.Name,
		Expression:      req.Expression,
		DiscountPercent: req.DiscountPercent,
		Priority:        req.Priority,
		Active:          true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := h.service.CreateRule(ctx, rule); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rule.ID.String())
}

// UpdateRule handles PUT /pricing/rules/:id
func (h *PricingHandler) UpdateRule(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule, err := h.service.GetRule(ctx, ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(rule)

	if err := h.service.UpdateRule(ctx, rule); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rule)
}

// ListRules handles GET /pricing/rules
func (h *PricingHandler) ListRules(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.ListRules(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// ResolveDiscount handles POST /pricing/resolve
func (h *PricingHandler) ResolveDiscount(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ResolveDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, rule, err := h.service.ResolveDiscount(ctx, req.ToFacts())
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.ResolveDiscountResponse{DiscountPercent: discount}
	if rule != nil {
		ruleID := rule.ID.String()
		resp.RuleID = &ruleID
		resp.RuleName = &rule.Name
	}

	h.OK(c, resp)
}

// RegisterRoutes registers pricing routes.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/pricing")
	g.GET("/rules", middleware.RequirePermission("orders.view"), h.ListRules)
	g.POST("/rules", middleware.RequireSuperRole(), h.CreateRule)
	g.PUT("/rules/:id", middleware.RequireSuperRole(), h.UpdateRule)
	g.POST("/resolve", middleware.RequirePermission("orders.view"), h.ResolveDiscount)
}

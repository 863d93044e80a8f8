package handlers

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/domain/voucher"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// VoucherHandler handles voucher series endpoints.
type VoucherHandler struct {
	*BaseHandler
	service *voucher.Service
}

// NewVoucherHandler creates a new voucher handler.
func NewVoucherHandler(base *BaseHandler, service *voucher.Service) *VoucherHandler {
	return &VoucherHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateSeries handles POST /voucher-series
func (h *VoucherHandler) CreateSeries(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSeriesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	startFrom := req.StartFrom
	if startFrom == 0 {
		startFrom = 1
	}

	series := voucher.NewSeries(req.Name, req.Prefix, startFrom)
	if err := h.service.CreateSeries(ctx, series); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, series.ID.String())
}

// List handles GET /voucher-series
func (h *VoucherHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// RegisterRoutes registers voucher series routes. Series definitions
// shape every allocated document number, so changes are super-role only.
func (h *VoucherHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/voucher-series")
	g.GET("", middleware.RequireSuperRole(), h.List)
	g.POST("", middleware.RequireSuperRole(), h.CreateSeries)
}

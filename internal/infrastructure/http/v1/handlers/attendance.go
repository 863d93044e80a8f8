package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/attendance"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// AttendanceHandler handles attendance and visit endpoints. All
// operations act on the authenticated user.
type AttendanceHandler struct {
	*BaseHandler
	service *attendance.Service
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(base *BaseHandler, service *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CheckIn handles POST /attendance/check-in
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CheckIn(ctx, userID, req.Lat, req.Lng)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

// CheckOut handles POST /attendance/check-out
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CheckInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	record, err := h.service.CheckOut(ctx, userID, req.Lat, req.Lng)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

// Timesheet handles GET /attendance/timesheet
func (h *AttendanceHandler) Timesheet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	items, err := h.service.Timesheet(ctx, userID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// LogVisit handles POST /attendance/visits
func (h *AttendanceHandler) LogVisit(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.LogVisitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	customerID, err := id.Parse(req.CustomerID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customer id"))
		return
	}

	visit := &attendance.Visit{
		UserID:     userID,
		CustomerID: customerID,
		Notes:      req.Notes,
		Lat:        req.Lat,
		Lng:        req.Lng,
	}
	if req.OrderID != nil {
		orderID, err := id.Parse(*req.OrderID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid order id"))
			return
		}
		visit.OrderID = &orderID
	}

	if err := h.service.LogVisit(ctx, visit); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, visit.ID.String())
}

// Visits handles GET /attendance/visits
func (h *AttendanceHandler) Visits(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}

	items, err := h.service.Visits(ctx, userID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items})
}

// parseRange reads the from/to query range, "to" inclusive of the day.
func (h *AttendanceHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var query dto.RangeQuery
	if !h.BindQuery(c, &query) {
		return time.Time{}, time.Time{}, false
	}
	return query.From, query.To.Add(24 * time.Hour), true
}

// RegisterRoutes registers attendance routes.
func (h *AttendanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/attendance")
	g.POST("/check-in", h.CheckIn)
	g.POST("/check-out", h.CheckOut)
	g.GET("/timesheet", h.Timesheet)
	g.POST("/visits", middleware.RequirePermission("customers.view"), h.LogVisit)
	g.GET("/visits", h.Visits)
}

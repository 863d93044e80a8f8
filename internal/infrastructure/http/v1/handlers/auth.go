package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/auth"
	"refurbhq/internal/infrastructure/http/v1/dto"
	"refurbhq/internal/infrastructure/http/v1/middleware"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Logout(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(user))
}

// CreateRole handles POST /auth/roles
func (h *AuthHandler) CreateRole(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role, err := h.service.CreateRole(ctx, req.Name, req.Description, req.IsSuperRole)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, role)
}

// UpdateGrants handles PUT /auth/roles/:id/grants
func (h *AuthHandler) UpdateGrants(c *gin.Context) {
	ctx := c.Request.Context()

	roleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateGrantsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	perms, err := h.service.UpdateGrants(ctx, roleID, req.Grants)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, perms)
}

// ListRoles handles GET /auth/roles
func (h *AuthHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: roles})
}

// ListUsers handles GET /auth/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	filter := auth.UserFilter{
		Search: c.Query("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if roleID := c.Query("roleId"); roleID != "" {
		parsed, err := id.Parse(roleID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid role id"))
			return
		}
		filter.RoleID = &parsed
	}

	users, total, err := h.service.ListUsers(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.UserResponse, len(users))
	for i := range users {
		items[i] = dto.FromUser(&users[i])
	}

	h.OK(c, dto.PagedResponse{Items: items, Total: total})
}

// ListGrants handles GET /auth/grants
func (h *AuthHandler) ListGrants(c *gin.Context) {
	h.OK(c, dto.ListResponse{Items: auth.AllGrants()})
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.GET("/grants", h.ListGrants)
	protected.GET("/roles", h.ListRoles)

	// Privileged endpoints: gated on the role's is_super_role flag,
	// never on the role's name.
	protected.POST("/register", middleware.RequireSuperRole(), h.Register)
	protected.POST("/roles", middleware.RequireSuperRole(), h.CreateRole)
	protected.PUT("/roles/:id/grants", middleware.RequireSuperRole(), h.UpdateGrants)
	protected.GET("/users", middleware.RequireSuperRole(), h.ListUsers)
}

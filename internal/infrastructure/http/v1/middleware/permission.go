// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gin-gonic/gin"

	"refurbhq/internal/core/apperror"
	appctx "refurbhq/internal/core/context"
)

// RequirePermission middleware checks if the user holds a grant.
// Users whose role carries the is_super_role flag hold every grant;
// the role's name is never consulted.
func RequirePermission(grant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !appctx.HasPermission(c.Request.Context(), grant) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("required_permission", grant),
			)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSuperRole middleware restricts an endpoint to users whose
// role carries the is_super_role flag.
func RequireSuperRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if !user.IsSuperRole {
			_ = c.Error(apperror.NewForbidden("super role required"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission middleware checks if the user holds any of the
// given grants.
func RequireAnyPermission(grants ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, grant := range grants {
			if appctx.HasPermission(c.Request.Context(), grant) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_permissions", grants),
		)
		c.Abort()
	}
}

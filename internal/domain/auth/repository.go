package auth

import (
	"context"

	"refurbhq/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	Update(ctx context.Context, user *User) error
	List(ctx context.Context, filter UserFilter) ([]User, int, error)

	// Exists checks if a username is taken.
	Exists(ctx context.Context, username string) (bool, error)
}

// RoleRepository defines role and permission-set storage operations.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, roleID id.ID) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)

	// CreatePermissions inserts the role's grant set.
	CreatePermissions(ctx context.Context, perms *RolePermissions) error

	// GetPermissions loads the role's grant set.
	GetPermissions(ctx context.Context, roleID id.ID) (*RolePermissions, error)

	// UpdatePermissions replaces the role's grant set.
	UpdatePermissions(ctx context.Context, perms *RolePermissions) error
}

// TokenRepository defines refresh token storage operations.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	RoleID   *id.ID
	Limit    int
	Offset   int
}

// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"time"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
)

// Permission grants. Grants are flat strings held by a role's
// permission set; super roles hold all of them implicitly.
const (
	GrantDashboardView = "dashboard.view"
	GrantAccountsView  = "accounts.view"
	GrantCustomersView = "customers.view"
	GrantCustomersAdd  = "customers.add"
	GrantOrdersView    = "orders.view"
	GrantOrdersAdd     = "orders.add"
	GrantInventoryView = "inventory.view"
	GrantInventoryEdit = "inventory.edit"
	GrantReportsView   = "reports.view"
)

// AllGrants returns every known grant.
func AllGrants() []string {
	return []string{
		GrantDashboardView,
		GrantAccountsView,
		GrantCustomersView,
		GrantCustomersAdd,
		GrantOrdersView,
		GrantOrdersAdd,
		GrantInventoryView,
		GrantInventoryEdit,
		GrantReportsView,
	}
}

// DefaultGrants returns the grant set provisioned for a newly created
// non-super role.
func DefaultGrants() []string {
	return []string{
		GrantDashboardView,
		GrantAccountsView,
		GrantCustomersView,
		GrantCustomersAdd,
		GrantOrdersView,
		GrantOrdersAdd,
	}
}

// User represents a system user. Each user holds exactly one role.
type User struct {
	ID           id.ID  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FullName     string `db:"full_name" json:"fullName,omitempty"`
	Phone        string `db:"phone" json:"phone,omitempty"`

	RoleID id.ID `db:"role_id" json:"roleId"`

	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Version   int       `db:"version" json:"version"`

	// Loaded relations
	Role        *Role    `db:"-" json:"role,omitempty"`
	Permissions []string `db:"-" json:"permissions,omitempty"`
}

// NewUser creates a new active user.
func NewUser(username, passwordHash string, roleID id.ID) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       roleID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if id.IsNil(u.RoleID) {
		return apperror.NewValidation("role is required").WithDetail("field", "roleId")
	}
	return nil
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}

// HasPermission checks if user holds a grant. Users whose role is a
// super role hold every grant. Authorization looks only at the
// is_super_role flag, never at the role's name.
func (u *User) HasPermission(grant string) bool {
	if u.Role != nil && u.Role.IsSuperRole {
		return true
	}
	for _, p := range u.Permissions {
		if p == grant {
			return true
		}
	}
	return false
}

// Role groups users under one permission set.
type Role struct {
	ID          id.ID  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	// IsSuperRole grants everything. Set explicitly at role creation;
	// the role's name carries no authorization meaning.
	IsSuperRole bool `db:"is_super_role" json:"isSuperRole"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Loaded relations
	Permissions *RolePermissions `db:"-" json:"permissions,omitempty"`
}

// NewRole creates a new role.
func NewRole(name string, isSuperRole bool) *Role {
	now := time.Now().UTC()
	return &Role{
		ID:          id.New(),
		Name:        name,
		IsSuperRole: isSuperRole,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates role data.
func (r *Role) Validate(ctx context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// RolePermissions is the grant set attached to a role. Every role owns
// exactly one permission row, provisioned when the role is created.
type RolePermissions struct {
	ID     id.ID    `db:"id" json:"id"`
	RoleID id.ID    `db:"role_id" json:"roleId"`
	Grants []string `db:"grants" json:"grants"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Has reports whether the set contains the grant.
func (p *RolePermissions) Has(grant string) bool {
	for _, g := range p.Grants {
		if g == grant {
			return true
		}
	}
	return false
}

// RefreshToken represents a refresh token for JWT refresh.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason string     `db:"revoked_reason"`
}

// IsValid checks if refresh token is valid.
func (t *RefreshToken) IsValid() bool {
	if t.RevokedAt != nil {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	RoleName string `json:"roleName"`
}

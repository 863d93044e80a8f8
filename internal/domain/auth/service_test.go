package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

type fakeRoleRepo struct {
	roles map[id.ID]*Role
	perms map[id.ID]*RolePermissions
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *Role) error {
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *fakeRoleRepo) GetByID(ctx context.Context, roleID id.ID) (*Role, error) {
	role, ok := r.roles[roleID]
	if !ok {
		return nil, apperror.NewNotFound("role", roleID)
	}
	cp := *role
	return &cp, nil
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, name string) (*Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("role", name)
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *fakeRoleRepo) CreatePermissions(ctx context.Context, perms *RolePermissions) error {
	cp := *perms
	r.perms[perms.RoleID] = &cp
	return nil
}

func (r *fakeRoleRepo) GetPermissions(ctx context.Context, roleID id.ID) (*RolePermissions, error) {
	p, ok := r.perms[roleID]
	if !ok {
		return nil, apperror.NewNotFound("role permissions", roleID)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRoleRepo) UpdatePermissions(ctx context.Context, perms *RolePermissions) error {
	cp := *perms
	r.perms[perms.RoleID] = &cp
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*RefreshToken
}

func (r *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", tokenHash)
	}
	return t, nil
}

func (r *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for _, t := range r.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for _, t := range r.tokens {
		if t.UserID == userID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		&fakeUserRepo{users: make(map[id.ID]*User)},
		&fakeRoleRepo{roles: make(map[id.ID]*Role), perms: make(map[id.ID]*RolePermissions)},
		&fakeTokenRepo{tokens: make(map[string]*RefreshToken)},
		passthroughTx{},
		NewJWTService(DefaultJWTConfig("test-secret")),
		DefaultServiceConfig(),
	)
}

func TestCreateRole_ProvisionsDefaultGrants(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "salesman", "field sales staff", false)
	require.NoError(t, err)
	require.NotNil(t, role.Permissions)

	assert.ElementsMatch(t, DefaultGrants(), role.Permissions.Grants)
	assert.False(t, role.IsSuperRole)
	assert.True(t, role.Permissions.Has(GrantOrdersAdd))
	assert.False(t, role.Permissions.Has(GrantInventoryEdit))
}

func TestCreateRole_SuperRoleGetsAllGrants(t *testing.T) {
	svc := newTestService(t)

	role, err := svc.CreateRole(context.Background(), "admin", "", true)
	require.NoError(t, err)
	assert.True(t, role.IsSuperRole)
	assert.ElementsMatch(t, AllGrants(), role.Permissions.Grants)
}

func TestCreateRole_DuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, "salesman", "", false)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestHasPermission_FlagNotName(t *testing.T) {
	// A role merely named "admin" holds only its granted permissions.
	named := NewRole("admin", false)
	user := &User{Role: named, Permissions: []string{GrantOrdersView}}
	assert.True(t, user.HasPermission(GrantOrdersView))
	assert.False(t, user.HasPermission(GrantInventoryEdit))

	// The flag alone grants everything, regardless of name.
	flagged := NewRole("intern", true)
	super := &User{Role: flagged}
	assert.True(t, super.HasPermission(GrantInventoryEdit))
	assert.True(t, super.HasPermission(GrantReportsView))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "asha",
		Password: "correct-horse",
		RoleName: "salesman",
	})
	require.NoError(t, err)

	tokens, loggedIn, err := svc.Login(ctx, Credentials{Username: "asha", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.ElementsMatch(t, DefaultGrants(), loggedIn.Permissions)

	// The access token round-trips into a user context.
	userCtx, err := svc.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "asha", userCtx.Username)
	assert.Equal(t, "salesman", userCtx.Role)
	assert.False(t, userCtx.IsSuperRole)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		Username: "asha", Password: "correct-horse", RoleName: "salesman",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Username: "asha", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		Username: "asha", Password: "correct-horse", RoleName: "salesman",
	})
	require.NoError(t, err)

	for i := 0; i < svc.config.MaxLoginAttempts; i++ {
		_, _, err = svc.Login(ctx, Credentials{Username: "asha", Password: "wrong"})
		require.Error(t, err)
	}

	// Correct password is refused while the account is locked.
	_, _, err = svc.Login(ctx, Credentials{Username: "asha", Password: "correct-horse"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRefreshToken_Rotates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{
		Username: "asha", Password: "correct-horse", RoleName: "salesman",
	})
	require.NoError(t, err)

	tokens, _, err := svc.Login(ctx, Credentials{Username: "asha", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The consumed refresh token is dead.
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	require.Error(t, err)
}

func TestUpdateGrants_RejectsUnknown(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "salesman", "", false)
	require.NoError(t, err)

	_, err = svc.UpdateGrants(ctx, role.ID, []string{"warp.drive"})
	require.Error(t, err)

	perms, err := svc.UpdateGrants(ctx, role.ID, []string{GrantOrdersView})
	require.NoError(t, err)
	assert.Equal(t, []string{GrantOrdersView}, perms.Grants)
}

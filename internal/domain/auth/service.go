package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour, // 7 days
	}
}

// Service provides authentication and authorization logic.
type Service struct {
	userRepo   UserRepository
	roleRepo   RoleRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Register creates a new user under the named role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Username == "" {
		return nil, apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	exists, err := s.userRepo.Exists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("username already taken").WithDetail("username", req.Username)
	}

	role, err := s.roleRepo.GetByName(ctx, req.RoleName)
	if err != nil {
		return nil, apperror.NewNotFound("role", req.RoleName)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Username, string(passwordHash), role.ID)
	user.Email = req.Email
	user.FullName = req.FullName

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username,
		"role", role.Name)

	return user, nil
}

// Login authenticates user and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.userRepo.Update(ctx, user)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := s.loadAuthorization(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	_ = s.userRepo.Update(ctx, user)

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username)

	return tokens, user, nil
}

// RefreshToken refreshes access token using refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	token, err := s.tokenRepo.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := s.loadAuthorization(ctx, user); err != nil {
		return nil, err
	}

	// Rotate: the old refresh token dies with the refresh.
	_ = s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed")

	return s.generateTokenPair(ctx, user)
}

// Logout revokes all user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID, "logout")
}

// CreateRole creates a role together with its grant set in one
// transaction. Non-super roles receive the default grants; super roles
// receive every grant, though authorization checks never consult the
// list for them.
func (s *Service) CreateRole(ctx context.Context, name, description string, isSuperRole bool) (*Role, error) {
	role := NewRole(name, isSuperRole)
	role.Description = description
	if err := role.Validate(ctx); err != nil {
		return nil, err
	}

	existing, err := s.roleRepo.GetByName(ctx, name)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewDuplicate("role", "name", name)
	}

	grants := DefaultGrants()
	if isSuperRole {
		grants = AllGrants()
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return fmt.Errorf("create role: %w", err)
		}

		perms := &RolePermissions{
			ID:        id.New(),
			RoleID:    role.ID,
			Grants:    grants,
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.roleRepo.CreatePermissions(ctx, perms); err != nil {
			return fmt.Errorf("create role permissions: %w", err)
		}

		role.Permissions = perms
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "role created",
		"role_id", role.ID,
		"name", role.Name,
		"is_super_role", role.IsSuperRole)

	return role, nil
}

// UpdateGrants replaces a role's grant set. Unknown grant names are
// rejected.
func (s *Service) UpdateGrants(ctx context.Context, roleID id.ID, grants []string) (*RolePermissions, error) {
	known := make(map[string]bool, len(AllGrants()))
	for _, g := range AllGrants() {
		known[g] = true
	}
	for _, g := range grants {
		if !known[g] {
			return nil, apperror.NewValidation("unknown grant").WithDetail("grant", g)
		}
	}

	perms, err := s.roleRepo.GetPermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}

	perms.Grants = grants
	perms.UpdatedAt = time.Now().UTC()
	if err := s.roleRepo.UpdatePermissions(ctx, perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetUserByID retrieves a user with role and grants loaded.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err := s.loadAuthorization(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.userRepo.List(ctx, filter)
}

// ListRoles lists all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roleRepo.List(ctx)
}

// loadAuthorization attaches the user's role and grant set.
func (s *Service) loadAuthorization(ctx context.Context, user *User) error {
	role, err := s.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return fmt.Errorf("load role: %w", err)
	}
	user.Role = role

	perms, err := s.roleRepo.GetPermissions(ctx, role.ID)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	role.Permissions = perms
	user.Permissions = perms.Grants
	return nil
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	roleName := ""
	isSuperRole := false
	if user.Role != nil {
		roleName = user.Role.Name
		isSuperRole = user.Role.IsSuperRole
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(
		user.ID.String(), user.Username, roleName, user.Permissions, isSuperRole)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

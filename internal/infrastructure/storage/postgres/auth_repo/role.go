package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/auth"
	"refurbhq/internal/infrastructure/storage/postgres"
)

// RoleRepo implements auth.RoleRepository.
type RoleRepo struct {
	txm *postgres.TxManager
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(txm *postgres.TxManager) *RoleRepo {
	return &RoleRepo{txm: txm}
}

// Create creates a new role.
func (r *RoleRepo) Create(ctx context.Context, role *auth.Role) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO auth_roles (id, name, description, is_super_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		role.ID, role.Name, role.Description,
		role.IsSuperRole, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("role", "name", role.Name)
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// GetByID retrieves role by ID.
func (r *RoleRepo) GetByID(ctx context.Context, roleID id.ID) (*auth.Role, error) {
	return r.getWhere(ctx, "id = $1", roleID, roleID.String())
}

// GetByName retrieves role by name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*auth.Role, error) {
	return r.getWhere(ctx, "name = $1", name, name)
}

func (r *RoleRepo) getWhere(ctx context.Context, where string, arg any, key string) (*auth.Role, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, name, description, is_super_role, created_at, updated_at
		FROM auth_roles WHERE ` + where

	var role auth.Role
	err := q.QueryRow(ctx, query, arg).Scan(
		&role.ID, &role.Name, &role.Description,
		&role.IsSuperRole, &role.CreatedAt, &role.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("role", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query role: %w", err)
	}
	return &role, nil
}

// List retrieves all roles.
func (r *RoleRepo) List(ctx context.Context) ([]auth.Role, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, name, description, is_super_role, created_at, updated_at
		FROM auth_roles
		ORDER BY name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []auth.Role
	for rows.Next() {
		var role auth.Role
		err := rows.Scan(
			&role.ID, &role.Name, &role.Description,
			&role.IsSuperRole, &role.CreatedAt, &role.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

var _ auth.RoleRepository = (*RoleRepo)(nil)

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

// CreatePermissions inserts the role's grant set. One row per role,
// created together with the role itself.
func (r *RoleRepo) CreatePermissions(ctx context.Context, perms *auth.RolePermissions) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO auth_role_permissions (id, role_id, grants, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := q.Exec(ctx, query, perms.ID, perms.RoleID, perms.Grants, perms.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("role permissions", "role_id", perms.RoleID.String())
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("role", perms.RoleID.String())
		}
		return fmt.Errorf("insert role permissions: %w", err)
	}
	return nil
}

// GetPermissions loads the role's grant set.
func (r *RoleRepo) GetPermissions(ctx context.Context, roleID id.ID) (*auth.RolePermissions, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT id, role_id, grants, updated_at
		FROM auth_role_permissions WHERE role_id = $1
	`

	var perms auth.RolePermissions
	err := q.QueryRow(ctx, query, roleID).Scan(
		&perms.ID, &perms.RoleID, &perms.Grants, &perms.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("role permissions", roleID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	return &perms, nil
}

// UpdatePermissions replaces the role's grant set.
func (r *RoleRepo) UpdatePermissions(ctx context.Context, perms *auth.RolePermissions) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE auth_role_permissions SET grants = $2, updated_at = now()
		WHERE role_id = $1
	`

	result, err := q.Exec(ctx, query, perms.RoleID, perms.Grants)
	if err != nil {
		return fmt.Errorf("update role permissions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("role permissions", perms.RoleID.String())
	}
	return nil
}

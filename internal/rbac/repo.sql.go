package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/shared"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles with their permission sets expanded.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM roles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		role.Permissions = []Permission{}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.pool.Query(ctx, `
		SELECT rp.role_id, p.id, p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()
	byRole := make(map[uuid.UUID][]Permission)
	for permRows.Next() {
		var roleID uuid.UUID
		var perm Permission
		if err := permRows.Scan(&roleID, &perm.ID, &perm.Name); err != nil {
			return nil, err
		}
		byRole[roleID] = append(byRole[roleID], perm)
	}
	if err := permRows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		if perms, ok := byRole[roles[i].ID]; ok {
			roles[i].Permissions = perms
		}
	}
	return roles, nil
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role.Permissions = []Permission{}
	return &role, nil
}

// CreateRole inserts a role with an empty permission set.
func (r *Repository) CreateRole(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, name, created_at, updated_at`, uuid.New(), name).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if isPGError(err, pgUniqueViolation) {
			return nil, shared.AlreadyExists("Role already exists")
		}
		return nil, err
	}
	role.Permissions = []Permission{}
	return &role, nil
}

// DeleteRole removes a role. A role still referenced by users is protected
// by a restricting foreign key and surfaces as a conflict.
func (r *Repository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if isPGError(err, pgForeignKeyViolation) {
			return shared.Conflict("Role is assigned to one or more users")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListPermissions returns all permissions.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// GetPermission fetches a permission by id.
func (r *Repository) GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error) {
	var perm Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM permissions WHERE id = $1`, id).
		Scan(&perm.ID, &perm.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &perm, nil
}

// PermissionsByName resolves the subset of names that exist. Callers compare
// the result size against the request to detect unknown names.
func (r *Repository) PermissionsByName(ctx context.Context, names []string) ([]Permission, error) {
	if len(names) == 0 {
		return []Permission{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM permissions WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := make([]Permission, 0, len(names))
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// CreatePermission inserts a permission. Duplicate names surface as a
// domain-level already-exists error instead of a raw store message.
func (r *Repository) CreatePermission(ctx context.Context, name string) (*Permission, error) {
	var perm Permission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (id, name) VALUES ($1, $2)
		RETURNING id, name`, uuid.New(), name).
		Scan(&perm.ID, &perm.Name)
	if err != nil {
		if isPGError(err, pgUniqueViolation) {
			return nil, shared.AlreadyExists("Permission already exists")
		}
		return nil, err
	}
	return &perm, nil
}

// DeletePermission removes a permission. Links from users and roles cascade.
func (r *Repository) DeletePermission(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isPGError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var _ RepositoryPort = (*Repository)(nil)

package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/internal/platform/db"
	"github.com/stewardhq/steward/internal/rbac"
	"github.com/stewardhq/steward/internal/shared"
)

const pgUniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users with role and permissions expanded. Full scan
// semantics: no pagination, no filtering.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.status, u.created_at, u.updated_at,
		       ro.id, ro.name, ro.created_at, ro.updated_at
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		ORDER BY u.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var user User
		var role rbac.Role
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Status, &user.CreatedAt, &user.UpdatedAt,
			&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, err
		}
		role.Permissions = []rbac.Permission{}
		user.Role = &role
		user.Permissions = []rbac.Permission{}
		index[user.ID] = len(users)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	permRows, err := r.pool.Query(ctx, `
		SELECT up.user_id, p.id, p.name
		FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id`)
	if err != nil {
		return nil, err
	}
	defer permRows.Close()
	for permRows.Next() {
		var userID uuid.UUID
		var perm rbac.Permission
		if err := permRows.Scan(&userID, &perm.ID, &perm.Name); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Permissions = append(users[i].Permissions, perm)
		}
	}
	if err := permRows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user with role and permissions expanded.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	var role rbac.Role
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.status, u.created_at, u.updated_at,
		       ro.id, ro.name, ro.created_at, ro.updated_at
		FROM users u
		JOIN roles ro ON ro.id = u.role_id
		WHERE u.id = $1`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.Status, &user.CreatedAt, &user.UpdatedAt,
		&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	role.Permissions = []rbac.Permission{}
	user.Role = &role

	perms, err := r.userPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Permissions = perms
	return &user, nil
}

// CreateUser inserts the user row and its permission links in one
// transaction so an invalid link leaves nothing behind.
func (r *Repository) CreateUser(ctx context.Context, params WriteParams) (*User, error) {
	id := uuid.New()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, name, role_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
			id, params.Email, params.Name, params.RoleID, params.Status)
		if err != nil {
			return err
		}
		return linkPermissions(ctx, tx, id, params.PermissionIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.AlreadyExists("Email already in use")
		}
		return nil, err
	}
	return r.GetUser(ctx, id)
}

// UpdateUser rewrites the user row, reassigns the role unconditionally and
// replaces the permission set wholesale: clear all links, then attach exactly
// the requested ones.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, params WriteParams) (*User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET email = $2, name = $3, role_id = $4, status = $5, updated_at = NOW()
			WHERE id = $1`,
			id, params.Email, params.Name, params.RoleID, params.Status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, id); err != nil {
			return err
		}
		return linkPermissions(ctx, tx, id, params.PermissionIDs)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.AlreadyExists("Email already in use")
		}
		return nil, err
	}
	return r.GetUser(ctx, id)
}

// DeleteUser removes a user. Permission links cascade.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) userPermissions(ctx context.Context, id uuid.UUID) ([]rbac.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name
		FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = $1
		ORDER BY p.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := []rbac.Permission{}
	for rows.Next() {
		var perm rbac.Permission
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

func linkPermissions(ctx context.Context, tx pgx.Tx, userID uuid.UUID, permissionIDs []uuid.UUID) error {
	for _, permID := range permissionIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)`,
			userID, permID); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ RepositoryPort = (*Repository)(nil)

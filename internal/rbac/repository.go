package rbac

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for roles and permissions.
// Implementations translate store-level no-rows and uniqueness failures into
// shared domain errors.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*Role, error)
	CreateRole(ctx context.Context, name string) (*Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error)
	PermissionsByName(ctx context.Context, names []string) ([]Permission, error)
	CreatePermission(ctx context.Context, name string) (*Permission, error)
	DeletePermission(ctx context.Context, id uuid.UUID) error
}

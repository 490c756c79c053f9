package users

import (
	"context"

	"github.com/google/uuid"
)

// WriteParams carries a validated create or update into the store. Permission
// ids are resolved by the service beforehand; the repository only links them.
type WriteParams struct {
	Email         string
	Name          *string
	RoleID        uuid.UUID
	PermissionIDs []uuid.UUID
	Status        Status
}

// RepositoryPort defines data access methods for directory users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, params WriteParams) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, params WriteParams) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

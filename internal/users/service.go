package users

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/platform/cache"
	"github.com/stewardhq/steward/internal/rbac"
	"github.com/stewardhq/steward/internal/shared"
)

// RelationPort resolves role and permission references during validation.
// Implemented by rbac.Service.
type RelationPort interface {
	RoleByID(ctx context.Context, id uuid.UUID) (*rbac.Role, error)
	PermissionsByName(ctx context.Context, names []string) ([]rbac.Permission, error)
}

// AuditPort records directory mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Input carries a create or update request into the service. Permissions are
// referenced by name, the role by id, matching the wire contract.
type Input struct {
	Email       string
	Name        *string
	RoleID      uuid.UUID
	Permissions []string
	Status      Status
}

// Service handles directory user business logic: relationship validation
// before mutation, cache invalidation and audit trail after.
type Service struct {
	repo      RepositoryPort
	relations RelationPort
	cache     *cache.Versioned
	audit     AuditPort
	logger    *slog.Logger
}

// NewService builds Service instance. cache and audit may be nil.
func NewService(repo RepositoryPort, relations RelationPort, cache *cache.Versioned, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, relations: relations, cache: cache, audit: audit, logger: logger}
}

// ListUsers returns all users with role and permissions expanded, served from
// the versioned cache when warm.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.cache.FetchJSON(ctx, &users, func(ctx context.Context) (any, error) {
		return s.repo.ListUsers(ctx)
	}, "directory", "users")
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser validates the role and every named permission, then persists the
// user with its links. Any unknown permission name aborts the whole create.
func (s *Service) CreateUser(ctx context.Context, input Input) (*User, error) {
	permissionIDs, err := s.resolveRelations(ctx, input)
	if err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = StatusActive
	}
	user, err := s.repo.CreateUser(ctx, WriteParams{
		Email:         input.Email,
		Name:          input.Name,
		RoleID:        input.RoleID,
		PermissionIDs: permissionIDs,
		Status:        status,
	})
	if err != nil {
		return nil, err
	}
	s.recordMutation(ctx, "user.create", user.ID.String(), map[string]any{"email": user.Email})
	return user, nil
}

// UpdateUser confirms the target exists, validates relations, then replaces
// the permission set wholesale and reassigns the role unconditionally.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input Input) (*User, error) {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}
	permissionIDs, err := s.resolveRelations(ctx, input)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.UpdateUser(ctx, id, WriteParams{
		Email:         input.Email,
		Name:          input.Name,
		RoleID:        input.RoleID,
		PermissionIDs: permissionIDs,
		Status:        input.Status,
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}
	s.recordMutation(ctx, "user.update", user.ID.String(), map[string]any{"email": user.Email})
	return user, nil
}

// DeleteUser fetches then deletes; a confirmed-absent record is never handed
// to the store's delete.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("User not found")
		}
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("User not found")
		}
		return err
	}
	s.recordMutation(ctx, "user.delete", id.String(), nil)
	return nil
}

// resolveRelations checks the role exists and resolves every permission name.
// A resolved set smaller than the request means at least one unknown name.
func (s *Service) resolveRelations(ctx context.Context, input Input) ([]uuid.UUID, error) {
	if _, err := s.relations.RoleByID(ctx, input.RoleID); err != nil {
		return nil, err
	}
	perms, err := s.relations.PermissionsByName(ctx, input.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) != len(input.Permissions) {
		return nil, shared.NotFound("One or more permissions not found")
	}
	ids := make([]uuid.UUID, len(perms))
	for i, perm := range perms {
		ids[i] = perm.ID
	}
	return ids, nil
}

func (s *Service) recordMutation(ctx context.Context, action, entityID string, meta map[string]any) {
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("bump directory cache", slog.Any("error", err))
	}
	if s.audit == nil {
		return
	}
	var actorID int64
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		actorID = claims.AccountID
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("record audit log", slog.Any("error", err))
	}
}

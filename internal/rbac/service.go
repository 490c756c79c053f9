package rbac

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/platform/cache"
	"github.com/stewardhq/steward/internal/shared"
)

// AuditPort records directory mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles role and permission business logic. Roles and permissions
// are create/list/delete only; there are no update operations.
type Service struct {
	repo   RepositoryPort
	cache  *cache.Versioned
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service instance. cache and audit may be nil.
func NewService(repo RepositoryPort, cache *cache.Versioned, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger}
}

// ListRoles returns all roles with permissions expanded.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// RoleByID fetches a role, reporting a caller-facing not-found message.
func (s *Service) RoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("Role not found")
		}
		return nil, err
	}
	return role, nil
}

// CreateRole inserts a new role with an empty permission set.
func (s *Service) CreateRole(ctx context.Context, name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("Role name is required")
	}
	role, err := s.repo.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}
	s.recordMutation(ctx, "role.create", "role", role.ID.String(), map[string]any{"name": role.Name})
	return role, nil
}

// DeleteRole removes a role after confirming it exists.
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if _, err := s.RoleByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("Role not found")
		}
		return err
	}
	s.recordMutation(ctx, "role.delete", "role", id.String(), nil)
	return nil
}

// ListPermissions returns all permissions ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// PermissionsByName resolves existing permissions for the given names.
func (s *Service) PermissionsByName(ctx context.Context, names []string) ([]Permission, error) {
	return s.repo.PermissionsByName(ctx, names)
}

// CreatePermission inserts a new permission.
func (s *Service) CreatePermission(ctx context.Context, name string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Validation("Permission name is required")
	}
	perm, err := s.repo.CreatePermission(ctx, name)
	if err != nil {
		return nil, err
	}
	s.recordMutation(ctx, "permission.create", "permission", perm.ID.String(), map[string]any{"name": perm.Name})
	return perm, nil
}

// DeletePermission removes a permission after confirming it exists.
func (s *Service) DeletePermission(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetPermission(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("Permission not found")
		}
		return err
	}
	if err := s.repo.DeletePermission(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("Permission not found")
		}
		return err
	}
	s.recordMutation(ctx, "permission.delete", "permission", id.String(), nil)
	return nil
}

// recordMutation bumps the list cache and writes an audit entry. Deleting a
// permission cascades into user links, so user list caches go stale on any
// rbac mutation, not just user ones.
func (s *Service) recordMutation(ctx context.Context, action, entity, entityID string, meta map[string]any) {
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
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("record audit log", slog.Any("error", err))
	}
}

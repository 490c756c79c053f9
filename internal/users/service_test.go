package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/rbac"
	"github.com/stewardhq/steward/internal/shared"
)

// relationStub resolves roles and permissions from fixed maps, standing in
// for rbac.Service.
type relationStub struct {
	roles map[uuid.UUID]*rbac.Role
	perms map[string]rbac.Permission
}

func newRelationStub() *relationStub {
	return &relationStub{
		roles: make(map[uuid.UUID]*rbac.Role),
		perms: make(map[string]rbac.Permission),
	}
}

func (s *relationStub) addRole(name string) uuid.UUID {
	id := uuid.New()
	s.roles[id] = &rbac.Role{ID: id, Name: name}
	return id
}

func (s *relationStub) addPermission(name string) rbac.Permission {
	perm := rbac.Permission{ID: uuid.New(), Name: name}
	s.perms[name] = perm
	return perm
}

func (s *relationStub) RoleByID(_ context.Context, id uuid.UUID) (*rbac.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return nil, shared.NotFound("Role not found")
	}
	return role, nil
}

func (s *relationStub) PermissionsByName(_ context.Context, names []string) ([]rbac.Permission, error) {
	var out []rbac.Permission
	for _, name := range names {
		if perm, ok := s.perms[name]; ok {
			out = append(out, perm)
		}
	}
	return out, nil
}

// userMemRepo is an in-memory RepositoryPort that records the last write so
// tests can assert what would hit the store.
type userMemRepo struct {
	users     map[uuid.UUID]*User
	relations *relationStub
	writes    []WriteParams
}

func newUserMemRepo(relations *relationStub) *userMemRepo {
	return &userMemRepo{users: make(map[uuid.UUID]*User), relations: relations}
}

var _ RepositoryPort = (*userMemRepo)(nil)

func (m *userMemRepo) ListUsers(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *userMemRepo) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *userMemRepo) materialize(id uuid.UUID, params WriteParams) *User {
	user := &User{
		ID:          id,
		Email:       params.Email,
		Name:        params.Name,
		Role:        m.relations.roles[params.RoleID],
		Status:      params.Status,
		Permissions: []rbac.Permission{},
	}
	for _, permID := range params.PermissionIDs {
		for _, perm := range m.relations.perms {
			if perm.ID == permID {
				user.Permissions = append(user.Permissions, perm)
			}
		}
	}
	return user
}

func (m *userMemRepo) CreateUser(_ context.Context, params WriteParams) (*User, error) {
	for _, u := range m.users {
		if u.Email == params.Email {
			return nil, shared.AlreadyExists("Email already in use")
		}
	}
	m.writes = append(m.writes, params)
	user := m.materialize(uuid.New(), params)
	m.users[user.ID] = user
	return user, nil
}

func (m *userMemRepo) UpdateUser(_ context.Context, id uuid.UUID, params WriteParams) (*User, error) {
	if _, ok := m.users[id]; !ok {
		return nil, shared.ErrNotFound
	}
	m.writes = append(m.writes, params)
	user := m.materialize(id, params)
	m.users[id] = user
	return user, nil
}

func (m *userMemRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type auditRecorder struct {
	entries []shared.AuditLog
}

func (a *auditRecorder) Record(_ context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

type fixture struct {
	service   *Service
	repo      *userMemRepo
	relations *relationStub
	audit     *auditRecorder
	roleID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	relations := newRelationStub()
	roleID := relations.addRole("member")
	relations.addPermission("edit_users")
	relations.addPermission("view_users")
	repo := newUserMemRepo(relations)
	audit := &auditRecorder{}
	return &fixture{
		service:   NewService(repo, relations, nil, audit, nil),
		repo:      repo,
		relations: relations,
		audit:     audit,
		roleID:    roleID,
	}
}

func TestCreateUserPersistsResolvedRelations(t *testing.T) {
	f := newFixture(t)

	user, err := f.service.CreateUser(context.Background(), Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"edit_users", "view_users"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	require.NotNil(t, user.Role)
	assert.Equal(t, "member", user.Role.Name)
	assert.Len(t, user.Permissions, 2)
	// Status defaults to ACTIVE when the request omits it.
	assert.Equal(t, StatusActive, user.Status)

	require.Len(t, f.repo.writes, 1)
	assert.Len(t, f.repo.writes[0].PermissionIDs, 2)
}

func TestCreateUserUnknownRoleNeverPersists(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateUser(context.Background(), Input{
		Email:  "alice@example.com",
		RoleID: uuid.New(),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Role not found", err.Error())
	assert.Empty(t, f.repo.writes)
	assert.Empty(t, f.audit.entries)
}

func TestCreateUserOneUnknownPermissionAbortsAll(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateUser(context.Background(), Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"edit_users", "no_such_perm"},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "One or more permissions not found", err.Error())
	assert.Empty(t, f.repo.writes)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateUser(context.Background(), Input{Email: "alice@example.com", RoleID: f.roleID})
	require.NoError(t, err)

	_, err = f.service.CreateUser(context.Background(), Input{Email: "alice@example.com", RoleID: f.roleID})
	require.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Equal(t, "Email already in use", err.Error())
}

func TestUpdateUserMissingChecksBeforeRelations(t *testing.T) {
	f := newFixture(t)

	// Role id is bogus too, but the existence check must win.
	_, err := f.service.UpdateUser(context.Background(), uuid.New(), Input{
		Email:  "alice@example.com",
		RoleID: uuid.New(),
		Status: StatusActive,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
}

func TestUpdateUserReplacesPermissionsWholesale(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.CreateUser(context.Background(), Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"edit_users", "view_users"},
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateUser(context.Background(), created.ID, Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"view_users"},
		Status:      StatusInactive,
	})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, "view_users", updated.Permissions[0].Name)
	assert.Equal(t, StatusInactive, updated.Status)

	// The store write carries exactly the new set, never a merge.
	lastWrite := f.repo.writes[len(f.repo.writes)-1]
	assert.Len(t, lastWrite.PermissionIDs, 1)
}

func TestUpdateUserUnknownPermissionLeavesUserUntouched(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.CreateUser(context.Background(), Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"edit_users"},
	})
	require.NoError(t, err)

	_, err = f.service.UpdateUser(context.Background(), created.ID, Input{
		Email:       "alice@example.com",
		RoleID:      f.roleID,
		Permissions: []string{"no_such_perm"},
		Status:      StatusActive,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	current, err := f.repo.GetUser(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, current.Permissions, 1)
	assert.Equal(t, "edit_users", current.Permissions[0].Name)
}

func TestDeleteUserMissing(t *testing.T) {
	f := newFixture(t)

	err := f.service.DeleteUser(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())
}

func TestDeleteUserRemoves(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.CreateUser(context.Background(), Input{Email: "alice@example.com", RoleID: f.roleID})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteUser(context.Background(), created.ID))
	_, err = f.repo.GetUser(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMutationsCarryActorFromClaims(t *testing.T) {
	f := newFixture(t)
	ctx := auth.ContextWithClaims(context.Background(), auth.Claims{AccountID: 42, Role: "admin"})

	created, err := f.service.CreateUser(ctx, Input{Email: "alice@example.com", RoleID: f.roleID})
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteUser(ctx, created.ID))

	require.Len(t, f.audit.entries, 2)
	assert.Equal(t, int64(42), f.audit.entries[0].ActorID)
	assert.Equal(t, "user.create", f.audit.entries[0].Action)
	assert.Equal(t, "user.delete", f.audit.entries[1].Action)
	assert.Equal(t, created.ID.String(), f.audit.entries[1].EntityID)
}

func TestListUsersPassesThroughWithoutCache(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateUser(context.Background(), Input{Email: "alice@example.com", RoleID: f.roleID})
	require.NoError(t, err)

	users, err := f.service.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

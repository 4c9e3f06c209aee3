package services

import (
	"context"
	"testing"

	"myhotel/models"
	"myhotel/rbac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rbacFixture struct {
	*fixture
	Perms *PermissionService
	Users *UserService
}

func newRBACFixture(t *testing.T) *rbacFixture {
	t.Helper()
	f := newFixture(t)
	rf := &rbacFixture{
		fixture: f,
		Perms:   NewPermissionService(f.DB, nil),
		Users:   NewUserService(f.DB, f.Ledger, nil),
	}
	rf.Perms.Now = fixedNow
	require.NoError(t, rf.Perms.SyncPermissions(context.Background()))
	return rf
}

func (rf *rbacFixture) user(t *testing.T, username string, superuser bool) models.User {
	t.Helper()
	u, err := rf.Users.Create(context.Background(), nil, UserInput{Username: username, Password: "password123", IsSuperuser: &superuser})
	require.NoError(t, err)
	return u
}

func TestSyncPermissionsIsIdempotent(t *testing.T) {
	rf := newRBACFixture(t)
	require.NoError(t, rf.Perms.SyncPermissions(context.Background()))
	perms, err := rf.Perms.ListPermissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, perms, len(rbac.All()))
}

func TestViewerRoleSnapshot(t *testing.T) {
	rf := newRBACFixture(t)
	ctx := context.Background()
	u := rf.user(t, "viewer", false)

	viewer, err := rf.Perms.CreateRole(ctx, RoleInput{
		Name:        "Viewer",
		Permissions: []string{"view_booking", "access_booking"},
	})
	require.NoError(t, err)
	assert.Len(t, viewer.Permissions, 2)
	_, err = rf.Perms.AssignRole(ctx, u.ID, viewer.ID, nil)
	require.NoError(t, err)

	p, err := rf.Perms.Snapshot(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, rbac.HasPermission(p, rbac.Perm(rbac.CategoryBooking, rbac.ActionView)))
	assert.False(t, rbac.HasPermission(p, rbac.Perm(rbac.CategoryBooking, rbac.ActionEdit)))
	assert.Equal(t, []rbac.Section{rbac.SectionBooking}, rbac.AccessibleSections(p))
	assert.Equal(t, []string{"access_booking", "view_booking"}, rbac.AllPermissionCodenames(p))

	_, err = rf.Perms.UpdateRole(ctx, viewer.ID, RoleInput{IsActive: boolPtr(false)})
	require.NoError(t, err)
	p, err = rf.Perms.Snapshot(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, rbac.AllPermissionCodenames(p))
	assert.Empty(t, rbac.AccessibleSections(p))
}

func TestSuperuserSnapshot(t *testing.T) {
	rf := newRBACFixture(t)
	admin := rf.user(t, "root", true)
	p, err := rf.Perms.Snapshot(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.Sections, rbac.AccessibleSections(p))
	assert.Len(t, rbac.AllPermissionCodenames(p), len(rbac.All()))
}

func TestSnapshotRejectsMissingAndInactiveUsers(t *testing.T) {
	rf := newRBACFixture(t)
	ctx := context.Background()

	_, err := rf.Perms.Snapshot(ctx, 999)
	requireKind(t, err, KindUnauthorized)

	u := rf.user(t, "idle", false)
	_, err = rf.Users.Update(ctx, nil, u.ID, UserInput{IsActive: boolPtr(false)})
	require.NoError(t, err)
	_, err = rf.Perms.Snapshot(ctx, u.ID)
	assert.Equal(t, "user_inactive", requireKind(t, err, KindForbidden).Code)
}

func TestRoleManagement(t *testing.T) {
	rf := newRBACFixture(t)
	ctx := context.Background()
	u := rf.user(t, "clerk", false)

	_, err := rf.Perms.CreateRole(ctx, RoleInput{Name: "Clerk", Permissions: []string{"fly_booking"}})
	assert.Equal(t, "unknown_permission", requireKind(t, err, KindValidation).Code)

	role, err := rf.Perms.CreateRole(ctx, RoleInput{Name: "Clerk", Permissions: []string{"view_guest"}})
	require.NoError(t, err)

	_, err = rf.Perms.CreateRole(ctx, RoleInput{Name: "Clerk"})
	assert.Equal(t, "role_exists", requireKind(t, err, KindConflict).Code)

	grantor := uint(1)
	ur, err := rf.Perms.AssignRole(ctx, u.ID, role.ID, &grantor)
	require.NoError(t, err)
	assert.Equal(t, "Clerk", ur.Role.Name)
	assert.True(t, today.Equal(ur.GrantedAt))

	_, err = rf.Perms.AssignRole(ctx, u.ID, role.ID, nil)
	assert.Equal(t, "role_already_assigned", requireKind(t, err, KindConflict).Code)

	role, err = rf.Perms.SetRolePermissions(ctx, role.ID, []string{"view_guest", "edit_guest", "access_guest"})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 3)

	role, err = rf.Perms.UpdateRole(ctx, role.ID, RoleInput{Description: "Front desk clerk"})
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 3, "nil permissions keep the set")

	role, err = rf.Perms.SetRolePermissions(ctx, role.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, role.Permissions)

	require.NoError(t, rf.Perms.RemoveRole(ctx, u.ID, role.ID))
	requireKind(t, rf.Perms.RemoveRole(ctx, u.ID, role.ID), KindNotFound)

	_, err = rf.Perms.AssignRole(ctx, u.ID, role.ID, nil)
	require.NoError(t, err)
	require.NoError(t, rf.Perms.DeleteRole(ctx, role.ID))
	roles, err := rf.Perms.UserRoles(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
	_, err = rf.Perms.GetRole(ctx, role.ID)
	requireKind(t, err, KindNotFound)
}

func TestUserService(t *testing.T) {
	rf := newRBACFixture(t)
	ctx := context.Background()

	_, err := rf.Users.Create(ctx, nil, UserInput{Username: "shorty", Password: "123"})
	assert.Equal(t, "weak_password", requireKind(t, err, KindValidation).Code)

	u := rf.user(t, "Frontdesk", false)
	assert.Equal(t, "frontdesk", u.Username)
	assert.NotEqual(t, "password123", u.Password)

	_, err = rf.Users.Create(ctx, nil, UserInput{Username: "frontdesk", Password: "password123"})
	assert.Equal(t, "username_taken", requireKind(t, err, KindConflict).Code)

	err = rf.Users.Delete(ctx, &rbac.Principal{UserID: u.ID}, u.ID)
	assert.Equal(t, "self_delete", requireKind(t, err, KindConflict).Code)

	require.NoError(t, rf.Users.Delete(ctx, nil, u.ID))
	_, err = rf.Perms.Snapshot(ctx, u.ID)
	requireKind(t, err, KindUnauthorized)
	require.NoError(t, rf.Users.Restore(ctx, u.ID))
	_, err = rf.Perms.Snapshot(ctx, u.ID)
	require.NoError(t, err)
}

func boolPtr(v bool) *bool { return &v }

func TestSuperuserAccountsNeedSuperuserCaller(t *testing.T) {
	rf := newRBACFixture(t)
	ctx := context.Background()
	root := rf.user(t, "root", true)
	clerk := rf.user(t, "clerk", false)
	asClerk := &rbac.Principal{UserID: clerk.ID, Username: clerk.Username}
	asRoot := &rbac.Principal{UserID: root.ID, Username: root.Username, Superuser: true}

	_, err := rf.Users.Update(ctx, asClerk, clerk.ID, UserInput{IsSuperuser: boolPtr(true)})
	assert.Equal(t, "superuser_required", requireKind(t, err, KindForbidden).Code)
	_, err = rf.Users.Create(ctx, asClerk, UserInput{Username: "sneaky", Password: "password123", IsSuperuser: boolPtr(true)})
	requireKind(t, err, KindForbidden)
	_, err = rf.Users.Update(ctx, asClerk, root.ID, UserInput{Password: "hijacked123"})
	requireKind(t, err, KindForbidden)
	_, err = rf.Users.Update(ctx, asClerk, root.ID, UserInput{IsActive: boolPtr(false)})
	requireKind(t, err, KindForbidden)
	requireKind(t, rf.Users.Delete(ctx, asClerk, root.ID), KindForbidden)

	got, err := rf.Users.Get(ctx, clerk.ID, QueryDefault)
	require.NoError(t, err)
	assert.False(t, got.IsSuperuser)

	// Ordinary edits and an explicit false flag stay open to staff.
	_, err = rf.Users.Update(ctx, asClerk, clerk.ID, UserInput{FullName: "Desk Clerk", IsSuperuser: boolPtr(false)})
	require.NoError(t, err)

	promoted, err := rf.Users.Update(ctx, asRoot, clerk.ID, UserInput{IsSuperuser: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, promoted.IsSuperuser)
	require.NoError(t, rf.Users.Delete(ctx, asRoot, clerk.ID))
}

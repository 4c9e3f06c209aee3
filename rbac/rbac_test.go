package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewerRole() RoleGrant {
	codenames := []string{}
	for _, c := range Categories {
		codenames = append(codenames, Perm(c, ActionView).Codename())
	}
	codenames = append(codenames, SectionAccess(SectionBooking).Codename())
	return RoleGrant{RoleID: 3, Name: "Viewer", Active: true, Codenames: codenames}
}

func TestCodenames(t *testing.T) {
	assert.Equal(t, "edit_booking", Perm(CategoryBooking, ActionEdit).Codename())
	assert.Equal(t, "add_roomtype", Perm(CategoryRoomType, ActionAdd).Codename())
	assert.Equal(t, "access_room_setup", SectionAccess(SectionRoomSetup).Codename())
	assert.Equal(t, "Can delete contact message", Perm(CategoryContactMessage, ActionDelete).Name())
	assert.Panics(t, func() { Perm("spaceship", ActionView) })
}

func TestParseRoundTrip(t *testing.T) {
	all := All()
	assert.Len(t, all, len(Categories)*len(Actions)+len(Sections))

	seen := map[string]bool{}
	for _, p := range all {
		require.False(t, seen[p.Codename()], "duplicate codename %s", p.Codename())
		seen[p.Codename()] = true

		parsed, err := Parse(p.Codename())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	for _, bad := range []string{"", "fly_booking", "view_spaceship", "access_attic", "viewbooking"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestSuperuserHasEverything(t *testing.T) {
	su := &Principal{UserID: 1, Superuser: true}
	assert.True(t, HasCodename(su, "delete_booking"))
	assert.True(t, HasCodename(su, "anything_at_all"))
	assert.Equal(t, Sections, AccessibleSections(su))
	assert.Len(t, AllPermissionCodenames(su), len(All()))
}

func TestNoRolesHasNothing(t *testing.T) {
	p := &Principal{UserID: 2}
	for _, perm := range All() {
		assert.False(t, HasPermission(p, perm), perm.Codename())
	}
	assert.Empty(t, AccessibleSections(p))
	assert.Empty(t, AllPermissionCodenames(p))
	assert.False(t, HasCodename(nil, "view_booking"))
}

func TestViewerRole(t *testing.T) {
	p := &Principal{UserID: 7, Roles: []RoleGrant{viewerRole()}}
	assert.True(t, HasPermission(p, Perm(CategoryBooking, ActionView)))
	assert.False(t, HasPermission(p, Perm(CategoryBooking, ActionEdit)))
	assert.Equal(t, []Section{SectionBooking}, AccessibleSections(p))
}

func TestInactiveRoleIgnored(t *testing.T) {
	role := viewerRole()
	role.Active = false
	p := &Principal{UserID: 7, Roles: []RoleGrant{role}}
	assert.False(t, HasPermission(p, Perm(CategoryBooking, ActionView)))
	assert.Empty(t, AllPermissionCodenames(p))
}

func TestCodenameUnionDeduplicated(t *testing.T) {
	p := &Principal{Roles: []RoleGrant{
		{Active: true, Codenames: []string{"view_booking", "edit_booking"}},
		{Active: true, Codenames: []string{"view_booking", "access_booking"}},
	}}
	assert.Equal(t, []string{"access_booking", "edit_booking", "view_booking"}, AllPermissionCodenames(p))
}

func TestGuardShortCircuits(t *testing.T) {
	g := Require(SectionBooking, CategoryBooking, ActionEdit)

	noSection := &Principal{Roles: []RoleGrant{{Active: true, Codenames: []string{"edit_booking"}}}}
	err := g.Check(noSection)
	var denied *DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, RequirementSection, denied.Requirement)
	assert.Equal(t, "access_booking", denied.Codename)

	viewer := &Principal{Roles: []RoleGrant{viewerRole()}}
	err = g.Check(viewer)
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, RequirementPermission, denied.Requirement)
	assert.Equal(t, "edit_booking", denied.Codename)

	assert.NoError(t, Require(SectionBooking, CategoryBooking, ActionView).Check(viewer))
	assert.NoError(t, RequireSection(SectionBooking).Check(viewer))
	assert.Error(t, RequireSection(SectionAccount).Check(viewer))
}

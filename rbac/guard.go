package rbac

import "fmt"

// Guard is the authorization requirement of one protected operation: section
// access first, then the action permission. Either part may be left empty.
type Guard struct {
	Section    Section
	Permission Permission
}

// Require builds a guard for an entity action inside a section.
func Require(s Section, c Category, a Action) Guard {
	return Guard{Section: s, Permission: Perm(c, a)}
}

// RequireSection builds a section-only guard.
func RequireSection(s Section) Guard {
	if !s.Valid() {
		panic(fmt.Sprintf("rbac: unknown section %q", s))
	}
	return Guard{Section: s}
}

type Requirement string

const (
	RequirementSection    Requirement = "section_access"
	RequirementPermission Requirement = "permission"
)

// DeniedError names the first requirement that failed.
type DeniedError struct {
	Requirement Requirement
	Codename    string
}

func (e *DeniedError) Error() string {
	if e.Requirement == RequirementSection {
		return fmt.Sprintf("section access denied: %s", e.Codename)
	}
	return fmt.Sprintf("permission denied: %s", e.Codename)
}

// Check evaluates the guard against p, short-circuiting on the first failure.
func (g Guard) Check(p *Principal) error {
	if g.Section != "" && !HasSectionAccess(p, g.Section) {
		return &DeniedError{Requirement: RequirementSection, Codename: "access_" + string(g.Section)}
	}
	if !g.Permission.IsZero() && !HasPermission(p, g.Permission) {
		return &DeniedError{Requirement: RequirementPermission, Codename: g.Permission.Codename()}
	}
	return nil
}

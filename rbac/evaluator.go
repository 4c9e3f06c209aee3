package rbac

import (
	"sort"
)

// RoleGrant is one role held by a principal at snapshot time.
type RoleGrant struct {
	RoleID    uint
	Name      string
	Active    bool
	Codenames []string
}

// Principal is the authenticated actor together with the role assignments
// loaded for it. Callers build it per request; nothing here caches it.
type Principal struct {
	UserID    uint
	Username  string
	Superuser bool
	Roles     []RoleGrant
}

// HasCodename is true for superusers, otherwise when any active role grants
// the codename.
func HasCodename(p *Principal, codename string) bool {
	if p == nil {
		return false
	}
	if p.Superuser {
		return true
	}
	for _, role := range p.Roles {
		if !role.Active {
			continue
		}
		for _, c := range role.Codenames {
			if c == codename {
				return true
			}
		}
	}
	return false
}

func HasPermission(p *Principal, perm Permission) bool {
	return HasCodename(p, perm.Codename())
}

func HasSectionAccess(p *Principal, s Section) bool {
	return HasCodename(p, "access_"+string(s))
}

// AccessibleSections keeps the order of Sections.
func AccessibleSections(p *Principal) []Section {
	out := []Section{}
	for _, s := range Sections {
		if HasSectionAccess(p, s) {
			out = append(out, s)
		}
	}
	return out
}

// AllPermissionCodenames is the sorted, deduplicated union over active roles.
// A superuser gets the whole enumeration.
func AllPermissionCodenames(p *Principal) []string {
	if p == nil {
		return []string{}
	}
	seen := map[string]struct{}{}
	if p.Superuser {
		for _, perm := range All() {
			seen[perm.Codename()] = struct{}{}
		}
	} else {
		for _, role := range p.Roles {
			if !role.Active {
				continue
			}
			for _, c := range role.Codenames {
				seen[c] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Package rbac is the permission vocabulary and the evaluator over an explicit
// principal snapshot. It holds no process-wide state.
package rbac

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryHotel          Category = "hotel"
	CategoryHotelAmenity   Category = "hotelamenity"
	CategoryRoom           Category = "room"
	CategoryRoomType       Category = "roomtype"
	CategoryRoomAmenity    Category = "roomamenity"
	CategoryBooking        Category = "booking"
	CategoryGuest          Category = "guest"
	CategoryContactMessage Category = "contactmessage"
	CategoryUser           Category = "user"
	CategoryRole           Category = "role"

	// CategorySection marks synthetic section access permissions.
	CategorySection Category = "section"
)

var Categories = []Category{
	CategoryHotel,
	CategoryHotelAmenity,
	CategoryRoom,
	CategoryRoomType,
	CategoryRoomAmenity,
	CategoryBooking,
	CategoryGuest,
	CategoryContactMessage,
	CategoryUser,
	CategoryRole,
}

type Action string

const (
	ActionAdd    Action = "add"
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionAdd, ActionView, ActionEdit, ActionDelete}

type Section string

const (
	SectionBooking    Section = "booking"
	SectionGuest      Section = "guest"
	SectionRoomSetup  Section = "room_setup"
	SectionHotelSetup Section = "hotel_setup"
	SectionContact    Section = "contact"
	SectionAccount    Section = "account"
)

// Sections is the fixed, ordered section list shown in the back office.
var Sections = []Section{
	SectionBooking,
	SectionGuest,
	SectionRoomSetup,
	SectionHotelSetup,
	SectionContact,
	SectionAccount,
}

var categoryLabels = map[Category]string{
	CategoryHotel:          "hotel",
	CategoryHotelAmenity:   "hotel amenity",
	CategoryRoom:           "room",
	CategoryRoomType:       "room type",
	CategoryRoomAmenity:    "room amenity",
	CategoryBooking:        "booking",
	CategoryGuest:          "guest",
	CategoryContactMessage: "contact message",
	CategoryUser:           "user",
	CategoryRole:           "role",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (a Action) Valid() bool {
	switch a {
	case ActionAdd, ActionView, ActionEdit, ActionDelete:
		return true
	}
	return false
}

func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// Permission is one member of the closed (category x action) enumeration, or
// a section access permission when Category is CategorySection.
type Permission struct {
	Category Category
	Action   Action
	Section  Section
}

// Perm panics on values outside the enumeration; it is meant for
// declarations such as route guards.
func Perm(c Category, a Action) Permission {
	if !c.Valid() || !a.Valid() {
		panic(fmt.Sprintf("rbac: unknown permission %s/%s", c, a))
	}
	return Permission{Category: c, Action: a}
}

func SectionAccess(s Section) Permission {
	if !s.Valid() {
		panic(fmt.Sprintf("rbac: unknown section %q", s))
	}
	return Permission{Category: CategorySection, Action: ActionView, Section: s}
}

func (p Permission) IsSection() bool { return p.Category == CategorySection }

func (p Permission) IsZero() bool { return p == Permission{} }

// Codename renders "<action>_<category>" or "access_<section>".
func (p Permission) Codename() string {
	if p.IsSection() {
		return "access_" + string(p.Section)
	}
	return string(p.Action) + "_" + string(p.Category)
}

func (p Permission) Name() string {
	if p.IsSection() {
		return "Can access " + strings.ReplaceAll(string(p.Section), "_", " ") + " section"
	}
	return "Can " + string(p.Action) + " " + categoryLabels[p.Category]
}

func (p Permission) String() string { return p.Codename() }

// All lists every entity permission followed by every section permission.
func All() []Permission {
	out := make([]Permission, 0, len(Categories)*len(Actions)+len(Sections))
	for _, c := range Categories {
		for _, a := range Actions {
			out = append(out, Permission{Category: c, Action: a})
		}
	}
	for _, s := range Sections {
		out = append(out, Permission{Category: CategorySection, Action: ActionView, Section: s})
	}
	return out
}

// Parse resolves a codename back into the enumeration.
func Parse(codename string) (Permission, error) {
	codename = strings.TrimSpace(codename)
	if rest, ok := strings.CutPrefix(codename, "access_"); ok {
		s := Section(rest)
		if s.Valid() {
			return Permission{Category: CategorySection, Action: ActionView, Section: s}, nil
		}
		return Permission{}, fmt.Errorf("unknown section permission %q", codename)
	}
	action, category, ok := strings.Cut(codename, "_")
	if !ok {
		return Permission{}, fmt.Errorf("malformed permission codename %q", codename)
	}
	p := Permission{Category: Category(category), Action: Action(action)}
	if !p.Category.Valid() || !p.Action.Valid() {
		return Permission{}, fmt.Errorf("unknown permission %q", codename)
	}
	return p, nil
}

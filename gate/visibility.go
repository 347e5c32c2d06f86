package gate

import (
	"sort"
	"strings"

	"github.com/jrsteele09/hospital-records/users"
)

// Element is a piece of UI tagged with the roles allowed to see it.
type Element struct {
	ID           string
	AllowedRoles []users.Role
}

// ParseAllowList reads the comma separated role attribute, e.g. "doctor,admin".
// Unrecognised names are dropped.
func ParseAllowList(attr string) []users.Role {
	var roles []users.Role
	for _, part := range strings.Split(attr, ",") {
		if r := users.ParseRole(part); r != users.RoleUnknown {
			roles = append(roles, r)
		}
	}
	return roles
}

// ProjectVisibility maps every element ID to whether role may see it. A missing or
// unrecognised role sees nothing.
func ProjectVisibility(role users.Role, elements []Element) map[string]bool {
	visible := make(map[string]bool, len(elements))
	for _, e := range elements {
		visible[e.ID] = role.In(e.AllowedRoles)
	}
	return visible
}

// VisibleIDs is the sorted list of elements role may see.
func VisibleIDs(role users.Role, elements []Element) []string {
	var ids []string
	for id, ok := range ProjectVisibility(role, elements) {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// NavigationElements is the dashboard navigation, one element per protected route, using the
// same allow-lists the server enforces.
func NavigationElements() []Element {
	elements := make([]Element, 0, len(users.RoutePolicy))
	for _, route := range users.RoutePolicy {
		elements = append(elements, Element{
			ID:           route.Name,
			AllowedRoles: append([]users.Role(nil), route.Roles...),
		})
	}
	return elements
}

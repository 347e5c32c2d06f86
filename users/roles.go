package users

import "strings"

// Role is one of the closed set of hospital roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
	RoleDataAnalyst  Role = "data_analyst"

	// RoleUnknown is never granted access to anything.
	RoleUnknown Role = ""
)

// DefaultRole is assigned to self-registered users (lowest privilege).
const DefaultRole = RoleReceptionist

var allRoles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleDataAnalyst}

func AllRoles() []Role {
	return append([]Role(nil), allRoles...)
}

// ParseRole maps a raw role string to a Role, returning RoleUnknown for anything outside the set.
func ParseRole(s string) Role {
	r := Role(strings.TrimSpace(s))
	if r.Valid() {
		return r
	}
	return RoleUnknown
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// In reports whether r is a recognized role and appears in allowed.
func (r Role) In(allowed []Role) bool {
	if !r.Valid() {
		return false
	}
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}

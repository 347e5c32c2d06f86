package server

import (
	"strings"

	"github.com/jrsteele09/hospital-records/users"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":     Green,
	"POST":    Blue,
	"PUT":     Cyan,
	"DELETE":  Yellow,
	"PATCH":   Magenta,
	"OPTIONS": Gray,
}

// roleColors highlights clinical roles apart from admin and front-desk roles in the route listing.
var roleColors = map[users.Role]string{
	users.RoleAdmin:        Red,
	users.RoleDoctor:       Cyan,
	users.RoleNurse:        Cyan,
	users.RoleReceptionist: Yellow,
	users.RoleDataAnalyst:  Magenta,
}

// policyRoles renders the allow-list of a role-gated pattern, or "" for routes outside the policy.
func policyRoles(pattern string) string {
	for _, ra := range users.RoutePolicy {
		if ra.Pattern != pattern {
			continue
		}
		names := make([]string, 0, len(ra.Roles))
		for _, r := range ra.Roles {
			names = append(names, roleColors[r]+string(r)+ResetColor)
		}
		return strings.Join(names, ",")
	}
	return ""
}

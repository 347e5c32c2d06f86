package users

// RouteAccess names a protected domain route and the roles allowed to call it.
type RouteAccess struct {
	Name    string // Stable identifier, also used for navigation elements
	Pattern string // Go 1.22 ServeMux pattern
	Roles   []Role
}

// RoutePolicy is the access-control table for the patient-records API.
// The server enforces it and clients project it onto navigation visibility.
var RoutePolicy = []RouteAccess{
	{Name: "patients", Pattern: "GET /api/patients", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleDataAnalyst}},
	{Name: "patient-detail", Pattern: "GET /api/patients/{id}", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist}},
	{Name: "patient-create", Pattern: "POST /api/patients", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist}},
	{Name: "patient-update", Pattern: "PUT /api/patients/{id}", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse}},
	{Name: "patient-vitals", Pattern: "POST /api/patients/{id}/vitals", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse}},
	{Name: "high-risk-pregnancies", Pattern: "GET /api/analytics/high-risk-pregnancies", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleDataAnalyst}},
	{Name: "missed-follow-ups", Pattern: "GET /api/analytics/missed-follow-ups", Roles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleDataAnalyst}},
	{Name: "demographics", Pattern: "GET /api/analytics/demographics", Roles: []Role{RoleAdmin, RoleDoctor, RoleDataAnalyst}},
}

// RolesFor returns the allow-list of the named route, or nil if it is not in the policy.
func RolesFor(name string) []Role {
	for _, ra := range RoutePolicy {
		if ra.Name == name {
			return ra.Roles
		}
	}
	return nil
}

package authmodel

// Identity endpoint paths shared by the server and its clients.
const (
	PathRegister = "/api/auth/register"
	PathLogin    = "/api/auth/login"
	PathLogout   = "/api/auth/logout"
	PathRefresh  = "/api/auth/refresh"
	PathMe       = "/api/auth/me"
	PathHealth   = "/api/health"
)

package server

import (
	"github.com/jrsteele09/hospital-records/users"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("OPTIONS "+RouteAPIPrefix, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// IDENTITY
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// PATIENT RECORDS (forwarded to the records backend once authorised)
	for _, route := range users.RoutePolicy {
		s.RegisterRouteFunc(route.Pattern, ChainMiddleware(s.records.ServeHTTP, s.APIMiddleware(s.RequireAuth(), s.RequireRole(route.Roles...))...))
	}
}

package server

import "github.com/jrsteele09/hospital-records/authmodel"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Identity Routes
	RouteAuthRegister = authmodel.PathRegister
	RouteAuthLogin    = authmodel.PathLogin
	RouteAuthLogout   = authmodel.PathLogout
	RouteAuthRefresh  = authmodel.PathRefresh
	RouteAuthMe       = authmodel.PathMe

	// Service Routes
	RouteHealth  = authmodel.PathHealth
	RouteMetrics = "/metrics"

	// Preflight for every API route
	RouteAPIPrefix = "/api/"
)

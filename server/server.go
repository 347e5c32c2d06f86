package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/jrsteele09/hospital-records/auth"
	"github.com/jrsteele09/hospital-records/internal/config"
	"github.com/jrsteele09/hospital-records/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	identity *auth.IdentityService
	repos    auth.Repos
	records  http.Handler // Upstream patient-records service
	metrics  *Metrics
	proxies  []netip.Prefix // Peers whose X-Forwarded-For is trusted
	logger   zerolog.Logger
	nowTime  func() time.Time
}

type ServerOption func(*Server)

// WithRecordsHandler sets the handler that role-gated domain routes are forwarded to.
func WithRecordsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.records = h
	}
}

func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, repos auth.Repos, options ...ServerOption) (*Server, error) {
	s := &Server{
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		logger:  log.Logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = cfg.GetEnv()
	proxies, err := parseTrustedProxies(cfg.GetTrustedProxies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	s.proxies = proxies
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	if s.records == nil {
		records, err := NewRecordsProxy(cfg.GetRecordsBackendURL(), s.logger)
		if err != nil {
			return nil, fmt.Errorf("[Server New] records backend: %w", err)
		}
		s.records = records
	}

	secret := cfg.GetSigningSecret()
	if s.env != "DEV" && secret == config.DefaultSigningSecret {
		return nil, fmt.Errorf("[Server New] %w", config.ErrDefaultSigningSecret)
	}
	signer, err := token.NewHS256Signer(secret)
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	tokens := token.New(signer,
		token.WithIssuer(cfg.GetAppName()),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()),
		token.WithNowFunc(s.nowTime),
	)

	identity, err := auth.NewIdentityService(repos, tokens,
		auth.WithNowTime(s.nowTime),
		auth.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create identity service: %w", err)
	}
	s.identity = identity

	// Bootstrap: ensure an admin account exists
	if _, err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Identity exposes the identity service, mainly for maintenance jobs.
func (s *Server) Identity() *auth.IdentityService {
	return s.identity
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1], policyRoles(route))
		} else {
			s.logRoute("", parts[0], "")
		}
	}
}

func (s *Server) logRoute(method, path, roles string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	if roles == "" {
		s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
		return
	}
	s.logger.Info().Msgf("[%-19s] %s  %s", displayMethod, path, roles)
}

func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// clientIP is the peer address, or the first X-Forwarded-For hop when the peer is a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" || !s.trustedPeer(peer) {
		return peer
	}
	if hop := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0]); hop != "" {
		return hop
	}
	return peer
}

func (s *Server) trustedPeer(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

package gate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/hospital-records/client"
	"github.com/jrsteele09/hospital-records/session"
	"github.com/jrsteele09/hospital-records/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	PageLogin    = "/login"
	PageRegister = "/register"
)

// SessionClient is the part of the auth client the gate needs. *client.Client satisfies it.
type SessionClient interface {
	Tokens() *session.TokenStore
	RefreshAccessToken(ctx context.Context) client.Result
	ForceLogout()
	Now() time.Time
}

// Decision is the outcome of a gate check. When Allowed is false the page must not load any
// domain data and the caller redirects to RedirectTo.
type Decision struct {
	State      State
	Allowed    bool
	RedirectTo string
	User       *users.Profile
}

// Gate decides, once per page load, whether the viewer may see a page.
type Gate struct {
	client     SessionClient
	public     map[string]struct{}
	loginPage  string
	logger     zerolog.Logger
	refreshing atomic.Bool
	wg         sync.WaitGroup
}

type GateOption func(*Gate)

// WithPublicPages replaces the set of pages that never require a session.
func WithPublicPages(pages ...string) GateOption {
	return func(g *Gate) {
		g.public = make(map[string]struct{}, len(pages))
		for _, p := range pages {
			g.public[p] = struct{}{}
		}
	}
}

func WithLoginPage(page string) GateOption {
	return func(g *Gate) {
		g.loginPage = page
	}
}

func WithLogger(logger zerolog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

func New(c SessionClient, options ...GateOption) *Gate {
	g := &Gate{
		client:    c,
		loginPage: PageLogin,
		logger:    log.Logger,
	}
	WithPublicPages(PageLogin, PageRegister)(g)
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Check classifies the session for page. Only a Valid session may load a protected page.
// An expired session that can be refreshed still redirects on this load, but a refresh is
// started in the background so the next load finds a valid token.
func (g *Gate) Check(ctx context.Context, page string) Decision {
	if _, ok := g.public[page]; ok {
		return Decision{State: Unknown, Allowed: true}
	}

	tokens := g.client.Tokens()
	state, err := Classify(tokens, g.client.Now())
	if err != nil {
		if isMalformed(err) {
			g.logger.Warn().Err(err).Str("page", page).Msg("malformed access token, forcing logout")
			g.client.ForceLogout()
		} else {
			g.logger.Err(err).Str("page", page).Msg("reading session")
		}
		return g.redirect(state)
	}

	switch state {
	case Valid:
		user, err := tokens.User()
		if err != nil || user == nil {
			// A token without a profile cannot be rendered.
			g.logger.Warn().Err(err).Msg("session has no cached user, forcing logout")
			g.client.ForceLogout()
			return g.redirect(ExpiredTerminal)
		}
		return Decision{State: Valid, Allowed: true, User: user}
	case ExpiredRefreshable:
		g.refreshInBackground(ctx)
		return g.redirect(state)
	default:
		return g.redirect(state)
	}
}

func (g *Gate) redirect(state State) Decision {
	return Decision{State: state, Allowed: false, RedirectTo: g.loginPage}
}

// refreshInBackground starts at most one refresh at a time. The refresh outlives the page
// load that started it.
func (g *Gate) refreshInBackground(ctx context.Context) {
	if !g.refreshing.CompareAndSwap(false, true) {
		return
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.refreshing.Store(false)

		res := g.client.RefreshAccessToken(context.WithoutCancel(ctx))
		g.logger.Debug().Bool("success", res.Success).Str("message", res.Message).Msg("background refresh finished")
	}()
}

// Wait blocks until background refreshes have finished.
func (g *Gate) Wait() {
	g.wg.Wait()
}

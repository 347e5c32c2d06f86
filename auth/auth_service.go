package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/hospital-records/authmodel"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
	"github.com/jrsteele09/hospital-records/sessions"
	"github.com/jrsteele09/hospital-records/token"
	"github.com/jrsteele09/hospital-records/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the IdentityService
type Repos struct {
	Users    users.UserRepo // Repository for user data
	Sessions sessions.Repo  // Repository for login sessions
}

// ClientInfo identifies where a login came from, for the session record and activity log.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// LoginResult is everything the login endpoint returns.
type LoginResult struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// IdentityService implements registration, login, refresh and logout.
type IdentityService struct {
	repos   Repos
	tokens  *token.Manager
	nowTime func() time.Time
	logger  zerolog.Logger
}

// IdentityServiceOption defines a function type to modify the IdentityService instance.
type IdentityServiceOption func(*IdentityService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IdentityServiceOption {
	return func(s *IdentityService) {
		s.nowTime = nowFunc
	}
}

// WithLogger sets the activity logger
func WithLogger(logger zerolog.Logger) IdentityServiceOption {
	return func(s *IdentityService) {
		s.logger = logger
	}
}

// NewIdentityService initializes a new IdentityService with required dependencies.
func NewIdentityService(repos Repos, tokens *token.Manager, options ...IdentityServiceOption) (*IdentityService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewIdentityService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewIdentityService] Sessions repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewIdentityService] token manager is required")
	}

	s := &IdentityService{
		repos:   repos,
		tokens:  tokens,
		nowTime: time.Now,
		logger:  log.Logger,
	}

	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register creates a new user with the default role. The user still has to log in.
func (s *IdentityService) Register(req authmodel.RegisterRequest) (*users.User, error) {
	if err := req.Validate(); err != nil {
		var de *authmodel.DecodeError
		if errors.As(err, &de) && de.Field != "" {
			return nil, invalidRequest("Missing required field: " + de.Field)
		}
		return nil, invalidRequest(err.Error())
	}
	if err := users.ValidateUsername(req.Username); err != nil {
		return nil, invalidRequest(err.Error())
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return nil, invalidRequest(err.Error())
	}

	if _, err := s.repos.Users.GetByUsername(req.Username); err == nil {
		return nil, UserExistsErr
	}
	if _, err := s.repos.Users.GetByEmail(req.Email); err == nil {
		return nil, UserExistsErr
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("[Register] hash password: %w", err)
	}

	user := &users.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         users.DefaultRole,
		Active:       true,
		DateJoined:   s.nowTime(),
	}
	if err := s.repos.Users.Create(user); err != nil {
		if apperrors.Is(err, UserExistsErr) {
			return nil, UserExistsErr
		}
		return nil, fmt.Errorf("[Register] create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("activity", "register").
		Msgf("User registered with username %s", user.Username)
	return user, nil
}

// Login authenticates by username, or by email when the identifier contains '@'.
func (s *IdentityService) Login(identifier, password string, client ClientInfo) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, invalidRequest("Username and password are required")
	}

	user, err := s.lookup(identifier)
	if err != nil || !user.CheckPassword(password) {
		return nil, InvalidCredentialsErr
	}
	if !user.Active {
		return nil, UserDisabledErr
	}

	accessToken, _, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("[Login] %w", err)
	}
	refreshToken, refreshClaims, err := s.tokens.CreateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("[Login] %w", err)
	}

	now := s.nowTime()
	user.LastLogin = now
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, fmt.Errorf("[Login] update last login: %w", err)
	}

	if err := s.repos.Sessions.Upsert(&sessions.SessionData{
		ID:        refreshClaims.ID,
		UserID:    user.ID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		ExpiresAt: refreshClaims.ExpiresAt.Time,
	}); err != nil {
		return nil, fmt.Errorf("[Login] create session: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("activity", "login").
		Msgf("User logged in from %s", client.IPAddress)

	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *IdentityService) lookup(identifier string) (*users.User, error) {
	if strings.Contains(identifier, "@") {
		return s.repos.Users.GetByEmail(identifier)
	}
	return s.repos.Users.GetByUsername(identifier)
}

// Authenticate verifies a bearer access token.
func (s *IdentityService) Authenticate(rawAccessToken string) (*token.Claims, error) {
	return s.tokens.Verify(rawAccessToken, token.TypeAccess)
}

// Refresh mints a new access token. The refresh token must verify and its login session must
// still exist, so logging out invalidates every refresh token issued to the user.
func (s *IdentityService) Refresh(rawRefreshToken string) (string, error) {
	claims, err := s.tokens.Verify(rawRefreshToken, token.TypeRefresh)
	if err != nil {
		return "", apperrors.Wrapf(InvalidRefreshTokenErr, "%s", err.Error())
	}

	session, err := s.repos.Sessions.Get(claims.ID)
	if err != nil {
		return "", apperrors.Wrapf(InvalidRefreshTokenErr, "%s", err.Error())
	}
	if session.Expired(s.nowTime()) {
		return "", apperrors.Wrapf(InvalidRefreshTokenErr, "%s", apperrors.ErrSessionExpired.Error())
	}

	accessToken, _, err := s.tokens.RefreshAccessToken(claims)
	if err != nil {
		return "", fmt.Errorf("[Refresh] %w", err)
	}

	s.logger.Debug().Str("user_id", claims.Subject).Str("activity", "refresh").Msg("Access token refreshed")
	return accessToken, nil
}

// Logout deletes the user's login sessions and revokes the presented access token.
func (s *IdentityService) Logout(accessClaims *token.Claims) error {
	if err := s.repos.Sessions.DeleteByUserID(accessClaims.Subject); err != nil {
		return fmt.Errorf("[Logout] delete sessions: %w", err)
	}
	if err := s.tokens.Revoke(accessClaims); err != nil {
		return fmt.Errorf("[Logout] revoke: %w", err)
	}

	s.logger.Info().Str("user_id", accessClaims.Subject).Str("activity", "logout").Msg("User logged out")
	return nil
}

// CurrentUser returns the stored user for the subject of an access token.
func (s *IdentityService) CurrentUser(userID string) (*users.User, error) {
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		return nil, UserNotFoundErr
	}
	return user, nil
}

// PurgeExpiredSessions removes login sessions whose refresh tokens have expired, along with
// revocation entries for access tokens that are past their expiry.
func (s *IdentityService) PurgeExpiredSessions() error {
	pruned := s.tokens.PruneRevoked()
	if err := s.repos.Sessions.DeleteExpiredSessions(s.nowTime()); err != nil {
		return fmt.Errorf("[PurgeExpiredSessions] %w", err)
	}
	s.logger.Debug().Int("revocations_pruned", pruned).Msg("Expired sessions purged")
	return nil
}

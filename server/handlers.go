package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jrsteele09/hospital-records/auth"
	"github.com/jrsteele09/hospital-records/authmodel"
	apperrors "github.com/jrsteele09/hospital-records/internal/errors"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
)

// HealthHandler reports that the API is running
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authmodel.HealthResponse{Status: "healthy", Message: "API is running"})
	}
}

// PreflightHandler answers CORS preflight requests; CorsMiddleware writes the headers.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// RegisterHandler creates a user account. It never logs the user in.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		user, err := s.identity.Register(req)
		s.metrics.authEvent("register", err)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, authmodel.RegisterResponse{
			Message:  "User registered successfully",
			UserID:   authmodel.UserID(user.ID),
			Username: user.Username,
			Role:     user.Role,
		})
	}
}

// LoginHandler exchanges credentials for an access and refresh token pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authmodel.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}

		res, err := s.identity.Login(req.Username, req.Password, auth.ClientInfo{
			IPAddress: s.clientIP(r),
			UserAgent: r.UserAgent(),
		})
		s.metrics.authEvent("login", err)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authmodel.LoginResponse{
			Message:      "Login successful",
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			UserID:       authmodel.UserID(res.User.ID),
			Username:     res.User.Username,
			FirstName:    res.User.FirstName,
			LastName:     res.User.LastName,
			Role:         res.User.Role,
		})
	}
}

// RefreshHandler mints a new access token from the Bearer refresh token
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeJSONError(w, "Missing or invalid Authorization header", http.StatusUnauthorized)
			return
		}

		accessToken, err := s.identity.Refresh(raw)
		s.metrics.authEvent("refresh", err)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.RefreshResponse{AccessToken: accessToken})
	}
}

// LogoutHandler ends every login session of the caller and revokes the presented access token
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		err := s.identity.Logout(claims)
		s.metrics.authEvent("logout", err)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: "Logout successful"})
	}
}

// MeHandler returns the stored profile of the caller
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := s.identity.CurrentUser(claims.Subject)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		var lastLogin *time.Time
		if !user.LastLogin.IsZero() {
			lastLogin = &user.LastLogin
		}
		writeJSON(w, http.StatusOK, authmodel.UserResponse{
			UserID:    authmodel.UserID(user.ID),
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
			IsActive:  user.Active,
			LastLogin: lastLogin,
		})
	}
}

// writeServiceError maps identity service errors onto status codes and messages
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var reqErr *auth.RequestError
	switch {
	case errors.As(err, &reqErr):
		writeJSONError(w, reqErr.Message, http.StatusBadRequest)
	case apperrors.Is(err, auth.InvalidCredentialsErr):
		writeJSONError(w, "Invalid username or password", http.StatusUnauthorized)
	case apperrors.Is(err, auth.UserDisabledErr):
		writeJSONError(w, "Account is disabled", http.StatusForbidden)
	case apperrors.Is(err, auth.UserExistsErr):
		writeJSONError(w, "Username or email already exists", http.StatusConflict)
	case apperrors.Is(err, auth.InvalidRefreshTokenErr):
		writeJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
	case apperrors.Is(err, auth.UserNotFoundErr):
		writeJSONError(w, "User not found", http.StatusNotFound)
	default:
		s.logger.Err(err).Msg("identity service failure")
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSONError writes the {"error": "..."} body every failure response uses
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, authmodel.ErrorResponse{Error: message})
}

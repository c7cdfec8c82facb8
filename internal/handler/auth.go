package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
	"novara/internal/session"
	"novara/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService  *service.UserService
	sessions     *session.Manager
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, sessions *session.Manager, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		sessions:     sessions,
		secureCookie: secureCookie,
		logger:       logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteBadRequest(w, "Email already registered")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteBadRequest(w, "Username already taken")
		case errors.Is(err, model.ErrInvalidRegistration):
			httputil.WriteBadRequestWithCode(w, httputil.ErrCodeValidation, "Invalid data")
		default:
			h.logger.Error().Err(err).Msg("register failed")
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	if !h.startSession(w, r, user) {
		// the account exists now; a retry would hit "Email already registered"
		h.logger.Error().Int64("user_id", user.ID).Msg("account created but no session issued, client must log in")
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	h.startSession(w, r, user)
}

// startSession issues a token for user, sets the cookie and writes {user, token}.
// It reports false when no session could be created.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	issued, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create session")
		httputil.WriteInternalError(w, "Failed to create session")
		return false
	}

	session.SetCookie(w, issued.Token, h.sessions.MaxAge(), h.secureCookie)
	httputil.WriteJSON(w, http.StatusOK, model.AuthResponse{
		User:  user.Summary(),
		Token: issued.Token,
	})
	return true
}

// Logout handles POST /api/auth/logout
// Always succeeds; the caller's session, if any, is revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.logger.Warn().Err(err).Msg("failed to revoke session")
		}
	}

	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		h.logger.Info().Int64("user_id", userID).Msg("user logged out")
	}

	session.ClearCookie(w, h.secureCookie)
	httputil.WriteMessage(w, "Logged out successfully")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteUnauthorized(w, "Not authenticated")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load current user")
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.AuthResponse{User: user.Summary()})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
)

// UserHandler serves public member profiles and the caller's own profile edits.
type UserHandler struct {
	userService *service.UserService
	bookService *service.BookService
	blogService *service.BlogService
	logger      zerolog.Logger
}

func NewUserHandler(
	userService *service.UserService,
	bookService *service.BookService,
	blogService *service.BlogService,
	logger zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		bookService: bookService,
		blogService: blogService,
		logger:      logger.With().Str("component", "user_handler").Logger(),
	}
}

// GetProfile handles GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "User not found")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		httputil.WriteInternalError(w, "Failed to fetch profile")
		return
	}

	books, err := h.bookService.ListBySeller(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", id).Msg("failed to list profile books")
		httputil.WriteInternalError(w, "Failed to fetch profile")
		return
	}
	blogs, err := h.blogService.ListByAuthor(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", id).Msg("failed to list profile blogs")
		httputil.WriteInternalError(w, "Failed to fetch profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.Profile{
		ID:             user.ID,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		Books:          books,
		Blogs:          blogs,
	})
}

// UpdateMe handles PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// session outlived its account
			httputil.WriteUnauthorized(w, "Authentication required")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to update profile")
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

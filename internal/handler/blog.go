package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
)

type BlogHandler struct {
	blogService *service.BlogService
	logger      zerolog.Logger
}

func NewBlogHandler(blogService *service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		blogService: blogService,
		logger:      logger.With().Str("component", "blog_handler").Logger(),
	}
}

// List handles GET /api/blogs[?authorId=]
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	var authorID *int64
	if raw := r.URL.Query().Get("authorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid authorId")
			return
		}
		authorID = &id
	}

	blogs, err := h.blogService.List(r.Context(), authorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list blogs")
		httputil.WriteInternalError(w, "Failed to fetch blogs")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, blogs)
}

// GetByID handles GET /api/blogs/{id}
func (h *BlogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Blog not found")
	if !ok {
		return
	}

	blog, err := h.blogService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrBlogNotFound) {
			httputil.WriteNotFound(w, "Blog not found")
			return
		}
		h.logger.Error().Err(err).Int64("blog_id", id).Msg("failed to get blog")
		httputil.WriteInternalError(w, "Failed to fetch blog")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, blog)
}

// Create handles POST /api/blogs
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.CreateBlogRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	blog, err := h.blogService.Create(r.Context(), userID, req)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create blog")
		httputil.WriteInternalError(w, "Failed to create blog")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, blog)
}

// Update handles PUT /api/blogs/{id}
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "Blog not found or unauthorized")
	if !ok {
		return
	}

	var req model.UpdateBlogRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	blog, err := h.blogService.Update(r.Context(), id, userID, req)
	if err != nil {
		if errors.Is(err, model.ErrNotFoundOrUnauthorized) {
			httputil.WriteNotFound(w, "Blog not found or unauthorized")
			return
		}
		h.logger.Error().Err(err).Int64("blog_id", id).Msg("failed to update blog")
		httputil.WriteInternalError(w, "Failed to update blog")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, blog)
}

// Delete handles DELETE /api/blogs/{id}
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "Blog not found or unauthorized")
	if !ok {
		return
	}

	if err := h.blogService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, model.ErrNotFoundOrUnauthorized) {
			httputil.WriteNotFound(w, "Blog not found or unauthorized")
			return
		}
		h.logger.Error().Err(err).Int64("blog_id", id).Msg("failed to delete blog")
		httputil.WriteInternalError(w, "Failed to delete blog")
		return
	}

	httputil.WriteMessage(w, "Blog deleted successfully")
}

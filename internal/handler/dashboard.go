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

// DashboardHandler serves the caller's own books, blogs, purchases and sales.
type DashboardHandler struct {
	bookService  *service.BookService
	blogService  *service.BlogService
	orderService *service.OrderService
	activity     *service.ActivityService
	logger       zerolog.Logger
}

func NewDashboardHandler(
	bookService *service.BookService,
	blogService *service.BlogService,
	orderService *service.OrderService,
	activity *service.ActivityService,
	logger zerolog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		bookService:  bookService,
		blogService:  blogService,
		orderService: orderService,
		activity:     activity,
		logger:       logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Books handles GET /api/dashboard/books
func (h *DashboardHandler) Books(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	books, err := h.bookService.ListBySeller(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list own books")
		httputil.WriteInternalError(w, "Failed to fetch books")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, books)
}

// Blogs handles GET /api/dashboard/blogs
func (h *DashboardHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	blogs, err := h.blogService.ListByAuthor(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list own blogs")
		httputil.WriteInternalError(w, "Failed to fetch blogs")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, blogs)
}

// Orders handles GET /api/dashboard/orders
func (h *DashboardHandler) Orders(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListByBuyer(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list purchases")
		httputil.WriteInternalError(w, "Failed to fetch orders")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// Sales handles GET /api/dashboard/sales
func (h *DashboardHandler) Sales(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderService.ListBySeller(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list sales")
		httputil.WriteInternalError(w, "Failed to fetch sales")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

// Activity handles GET /api/dashboard/activity?limit=N
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.activity.Recent(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, model.ErrActivityDisabled) {
			httputil.WriteServiceUnavailable(w, model.CodeActivityDisabled, "Activity timeline is not available")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to read activity")
		httputil.WriteInternalError(w, "Failed to fetch activity")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

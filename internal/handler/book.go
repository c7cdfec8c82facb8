package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
)

type BookHandler struct {
	bookService *service.BookService
	logger      zerolog.Logger
}

func NewBookHandler(bookService *service.BookService, logger zerolog.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger.With().Str("component", "book_handler").Logger(),
	}
}

// List handles GET /api/books
// ?search= takes precedence over ?genre=&condition=&minPrice=&maxPrice=.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	books, err := h.bookService.List(r.Context(), model.BookQuery{
		Search:    q.Get("search"),
		Genre:     q.Get("genre"),
		Condition: q.Get("condition"),
		MinPrice:  q.Get("minPrice"),
		MaxPrice:  q.Get("maxPrice"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list books")
		httputil.WriteInternalError(w, "Failed to fetch books")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, books)
}

// GetByID handles GET /api/books/{id}
func (h *BookHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Book not found")
	if !ok {
		return
	}

	book, err := h.bookService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			httputil.WriteNotFound(w, "Book not found")
			return
		}
		h.logger.Error().Err(err).Int64("book_id", id).Msg("failed to get book")
		httputil.WriteInternalError(w, "Failed to fetch book")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, book)
}

// Create handles POST /api/books
// The caller becomes the seller.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.CreateBookRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	book, err := h.bookService.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidAmount) {
			httputil.WriteBadRequest(w, "Invalid book data")
			return
		}
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create book")
		httputil.WriteInternalError(w, "Failed to create book")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, book)
}

// Update handles PUT /api/books/{id}
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "Book not found or unauthorized")
	if !ok {
		return
	}

	var req model.UpdateBookRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	book, err := h.bookService.Update(r.Context(), id, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFoundOrUnauthorized):
			httputil.WriteNotFound(w, "Book not found or unauthorized")
		case errors.Is(err, model.ErrInvalidAmount):
			httputil.WriteBadRequest(w, "Invalid book data")
		default:
			h.logger.Error().Err(err).Int64("book_id", id).Msg("failed to update book")
			httputil.WriteInternalError(w, "Failed to update book")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, book)
}

// Delete handles DELETE /api/books/{id}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "Book not found or unauthorized")
	if !ok {
		return
	}

	if err := h.bookService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, model.ErrNotFoundOrUnauthorized) {
			httputil.WriteNotFound(w, "Book not found or unauthorized")
			return
		}
		h.logger.Error().Err(err).Int64("book_id", id).Msg("failed to delete book")
		httputil.WriteInternalError(w, "Failed to delete book")
		return
	}

	httputil.WriteMessage(w, "Book deleted successfully")
}

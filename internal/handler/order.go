package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"novara/internal/httputil"
	"novara/internal/model"
	"novara/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       zerolog.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger.With().Str("component", "order_handler").Logger(),
	}
}

// Create handles POST /api/orders
// The caller becomes the buyer; any status in the payload is ignored.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	order, err := h.orderService.Place(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrBookNotFound):
			httputil.WriteBadRequest(w, "Book not found")
		case errors.Is(err, model.ErrBookAlreadySold):
			httputil.WriteBadRequest(w, "Book already sold")
		case errors.Is(err, model.ErrInvalidAmount):
			httputil.WriteBadRequest(w, "Invalid order data")
		default:
			h.logger.Error().Err(err).Int64("user_id", userID).Int64("book_id", req.BookID).Msg("failed to place order")
			httputil.WriteInternalError(w, "Failed to create order")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status
// Only the seller of the ordered book may change the status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "Order not found or unauthorized")
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteDecodeError(w, r, err)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, userID, req.Status)
	if err != nil {
		if errors.Is(err, model.ErrNotFoundOrUnauthorized) {
			httputil.WriteNotFound(w, "Order not found or unauthorized")
			return
		}
		h.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		httputil.WriteInternalError(w, "Failed to update order")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"novara/internal/cache"
	"novara/internal/model"
	"novara/internal/queue"
)

// BookProvider resolves the seller of an ordered book.
type BookProvider interface {
	GetByID(ctx context.Context, id int64) (*model.Book, error)
}

// OrderProvider resolves the buyer of an order.
type OrderProvider interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
}

// Handler turns marketplace events into activity timeline entries.
// Every event lands in the actor's timeline; order events also reach the
// other party of the sale.
type Handler struct {
	activity cache.ActivityCache
	books    BookProvider
	orders   OrderProvider
	logger   zerolog.Logger
}

// NewHandler creates a new event handler.
func NewHandler(activity cache.ActivityCache, books BookProvider, orders OrderProvider, logger zerolog.Logger) *Handler {
	return &Handler{
		activity: activity,
		books:    books,
		orders:   orders,
		logger:   logger.With().Str("component", "activity_worker").Logger(),
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	startTime := time.Now()

	var err error
	switch event.Type {
	case queue.EventBookListed, queue.EventBookDeleted, queue.EventBlogPublished:
		err = h.record(ctx, event.UserID, event)
	case queue.EventOrderPlaced:
		err = h.handleOrderPlaced(ctx, event)
	case queue.EventOrderStatusChanged:
		err = h.handleOrderStatusChanged(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		return err
	}

	h.logger.Debug().Str("type", event.Type).Dur("duration", time.Since(startTime)).Msg("event handled")
	return nil
}

// handleOrderPlaced notifies the buyer and the seller of the book.
func (h *Handler) handleOrderPlaced(ctx context.Context, event queue.Event) error {
	if err := h.record(ctx, event.UserID, event); err != nil {
		return err
	}

	book, err := h.books.GetByID(ctx, event.BookID)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			// listing deleted after the sale; nobody left to notify
			return nil
		}
		return fmt.Errorf("get book: %w", err)
	}
	if book.SellerID == event.UserID {
		return nil
	}
	return h.record(ctx, book.SellerID, event)
}

// handleOrderStatusChanged notifies the seller who changed it and the buyer.
func (h *Handler) handleOrderStatusChanged(ctx context.Context, event queue.Event) error {
	if err := h.record(ctx, event.UserID, event); err != nil {
		return err
	}

	order, err := h.orders.GetByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil
		}
		return fmt.Errorf("get order: %w", err)
	}
	if order.BuyerID == event.UserID {
		return nil
	}
	return h.record(ctx, order.BuyerID, event)
}

func (h *Handler) record(ctx context.Context, userID int64, event queue.Event) error {
	if userID == 0 {
		return nil
	}
	if err := h.activity.Add(ctx, userID, ActivityFromEvent(event)); err != nil {
		return fmt.Errorf("record activity for user %d: %w", userID, err)
	}
	return nil
}

// ActivityFromEvent projects a stream event onto a timeline entry.
func ActivityFromEvent(event queue.Event) model.Activity {
	return model.Activity{
		Type:      event.Type,
		Timestamp: event.Timestamp,
		ActorID:   event.UserID,
		BookID:    event.BookID,
		BlogID:    event.BlogID,
		OrderID:   event.OrderID,
		Status:    event.Status,
		Amount:    event.Amount,
	}
}

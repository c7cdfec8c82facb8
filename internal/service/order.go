package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"novara/internal/model"
	"novara/internal/queue"
	"novara/internal/repository"
)

type OrderService struct {
	orderRepo repository.OrderRepository
	bookRepo  repository.BookRepository
	publisher queue.Publisher
	logger    zerolog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	bookRepo repository.BookRepository,
	publisher queue.Publisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		publisher: publisher,
		logger:    logger.With().Str("component", "order_service").Logger(),
	}
}

// Place creates a PENDING order for buyerID and marks the book sold, atomically.
// Returns ErrBookNotFound or ErrBookAlreadySold when the book cannot be bought.
func (s *OrderService) Place(ctx context.Context, buyerID int64, req model.CreateOrderRequest) (*model.Order, error) {
	amount, err := model.NormalizeAmount(req.TotalAmount)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		BuyerID:     buyerID,
		BookID:      req.BookID,
		TotalAmount: amount,
		Status:      model.OrderStatusPending,
	}
	if err := s.orderRepo.PlaceOrder(ctx, order); err != nil {
		if errors.Is(err, model.ErrBookNotFound) || errors.Is(err, model.ErrBookAlreadySold) {
			return nil, err
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	event := queue.NewOrderPlacedEvent(order.ID, order.BookID, buyerID, order.TotalAmount)
	if _, err := s.publisher.Publish(ctx, queue.StreamMarketplace, event); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", order.ID).Msg("failed to publish order_placed")
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("book_id", order.BookID).
		Int64("buyer_id", buyerID).
		Str("amount", order.TotalAmount).
		Msg("order placed")
	return order, nil
}

func (s *OrderService) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return s.orderRepo.ListByBuyer(ctx, buyerID)
}

// ListBySeller returns orders placed on the seller's books.
func (s *OrderService) ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	return s.orderRepo.ListBySeller(ctx, sellerID)
}

// UpdateStatus changes an order's status. Only the seller of the ordered book
// may do so; anything else is reported as ErrNotFoundOrUnauthorized.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, callerID int64, status string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	book, err := s.bookRepo.GetByID(ctx, order.BookID)
	if err != nil {
		if errors.Is(err, model.ErrBookNotFound) {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	if book.SellerID != callerID {
		return nil, model.ErrNotFoundOrUnauthorized
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return nil, model.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamMarketplace, queue.NewOrderStatusChangedEvent(orderID, callerID, status)); err != nil {
		s.logger.Warn().Err(err).Int64("order_id", orderID).Msg("failed to publish order_status_changed")
	}
	return updated, nil
}

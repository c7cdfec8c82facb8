package memory

import (
	"context"
	"time"

	"novara/internal/model"
)

type orderRepository struct {
	s *Store
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]model.Order, 0)
	for _, id := range r.s.orderOrder {
		if o := r.s.orders[id]; o.BuyerID == buyerID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sold := make(map[int64]struct{})
	for id, b := range r.s.books {
		if b.SellerID == sellerID {
			sold[id] = struct{}{}
		}
	}

	orders := make([]model.Order, 0)
	for _, id := range r.s.orderOrder {
		o := r.s.orders[id]
		if _, ok := sold[o.BookID]; ok {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	updated := copyOrder(o)
	updated.Status = status
	r.s.orders[id] = updated
	return copyOrder(updated), nil
}

func (r *orderRepository) PlaceOrder(ctx context.Context, order *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	book, ok := r.s.books[order.BookID]
	if !ok {
		return model.ErrBookNotFound
	}
	if book.IsSold {
		return model.ErrBookAlreadySold
	}

	order.ID = r.s.nextOrderID
	r.s.nextOrderID++
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	order.OrderDate = time.Now().UTC()

	r.s.orders[order.ID] = copyOrder(order)
	r.s.orderOrder = append(r.s.orderOrder, order.ID)

	sold := copyBook(book)
	sold.IsSold = true
	r.s.books[sold.ID] = sold
	return nil
}

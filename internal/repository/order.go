package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"novara/internal/model"
)

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, buyer_id, book_id, total_amount::text AS total_amount, status, order_date`

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	orders := []model.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &orders, query, buyerID); err != nil {
		return nil, fmt.Errorf("list orders by buyer: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]model.Order, error) {
	orders := []model.Order{}
	query := `
		SELECT o.id, o.buyer_id, o.book_id, o.total_amount::text AS total_amount, o.status, o.order_date
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE b.seller_id = $1
		ORDER BY o.id
	`
	if err := r.db.SelectContext(ctx, &orders, query, sellerID); err != nil {
		return nil, fmt.Errorf("list orders by seller: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	var o model.Order
	query := `UPDATE orders SET status = $1 WHERE id = $2 RETURNING ` + orderColumns
	err := r.db.GetContext(ctx, &o, query, status, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &o, nil
}

// PlaceOrder locks the book row, inserts the order and marks the book sold in one transaction.
func (r *orderRepository) PlaceOrder(ctx context.Context, o *model.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var isSold bool
	err = tx.GetContext(ctx, &isSold, `SELECT is_sold FROM books WHERE id = $1 FOR UPDATE`, o.BookID)
	if err == sql.ErrNoRows {
		return model.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("lock book: %w", err)
	}
	if isSold {
		return model.ErrBookAlreadySold
	}

	if o.Status == "" {
		o.Status = model.OrderStatusPending
	}
	query := `
		INSERT INTO orders (buyer_id, book_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, order_date
	`
	if err := tx.QueryRowxContext(ctx, query, o.BuyerID, o.BookID, o.TotalAmount, o.Status).Scan(&o.ID, &o.OrderDate); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE books SET is_sold = TRUE WHERE id = $1`, o.BookID); err != nil {
		return fmt.Errorf("mark book sold: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

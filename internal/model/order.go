package model

import (
	"errors"
	"time"
)

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Order records a buyer's checkout of a single book.
type Order struct {
	ID          int64     `db:"id" json:"id"`
	BuyerID     int64     `db:"buyer_id" json:"buyerId"`
	BookID      int64     `db:"book_id" json:"bookId"`
	TotalAmount string    `db:"total_amount" json:"totalAmount"`
	Status      string    `db:"status" json:"status"`
	OrderDate   time.Time `db:"order_date" json:"orderDate"`
}

// CreateOrderRequest is the request body for POST /api/orders.
// Any buyer id in the payload is ignored; the caller becomes the buyer.
type CreateOrderRequest struct {
	BookID      int64  `json:"bookId" validate:"required,gt=0"`
	TotalAmount string `json:"totalAmount" validate:"required,decimal"`
}

// UpdateOrderStatusRequest is the request body for PATCH /api/orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// Order errors
var (
	ErrOrderNotFound = errors.New("order not found")
)

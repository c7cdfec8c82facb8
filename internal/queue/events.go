package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the marketplace stream
const (
	EventBookListed         = "book_listed"
	EventBookDeleted        = "book_deleted"
	EventBlogPublished      = "blog_published"
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

// StreamMarketplace is the Redis Stream all marketplace events go to.
const StreamMarketplace = "stream:marketplace"

// Event is a marketplace domain event. Fields irrelevant to a type are omitted.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	UserID  int64 `json:"user_id,omitempty"` // actor: seller, author or buyer
	BookID  int64 `json:"book_id,omitempty"`
	BlogID  int64 `json:"blog_id,omitempty"`
	OrderID int64 `json:"order_id,omitempty"`

	Status string `json:"status,omitempty"`
	Amount string `json:"amount,omitempty"`
}

func NewBookListedEvent(bookID, sellerID int64) Event {
	return Event{Type: EventBookListed, Timestamp: time.Now().Unix(), BookID: bookID, UserID: sellerID}
}

func NewBookDeletedEvent(bookID, sellerID int64) Event {
	return Event{Type: EventBookDeleted, Timestamp: time.Now().Unix(), BookID: bookID, UserID: sellerID}
}

func NewBlogPublishedEvent(blogID, authorID int64) Event {
	return Event{Type: EventBlogPublished, Timestamp: time.Now().Unix(), BlogID: blogID, UserID: authorID}
}

// NewOrderPlacedEvent is emitted after the order is stored and its book marked sold.
func NewOrderPlacedEvent(orderID, bookID, buyerID int64, amount string) Event {
	return Event{
		Type:      EventOrderPlaced,
		Timestamp: time.Now().Unix(),
		OrderID:   orderID,
		BookID:    bookID,
		UserID:    buyerID,
		Amount:    amount,
	}
}

func NewOrderStatusChangedEvent(orderID, sellerID int64, status string) Event {
	return Event{
		Type:      EventOrderStatusChanged,
		Timestamp: time.Now().Unix(),
		OrderID:   orderID,
		UserID:    sellerID,
		Status:    status,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

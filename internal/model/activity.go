package model

import "errors"

// Activity is one entry in a user's marketplace timeline.
type Activity struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ActorID   int64  `json:"actorId"`
	BookID    int64  `json:"bookId,omitempty"`
	BlogID    int64  `json:"blogId,omitempty"`
	OrderID   int64  `json:"orderId,omitempty"`
	Status    string `json:"status,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100

	CodeActivityDisabled = "ACTIVITY_DISABLED"
)

// ErrActivityDisabled is returned when no activity backend is configured.
var ErrActivityDisabled = errors.New("activity timeline is not configured")

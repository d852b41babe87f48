package notification

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind names the event a message was produced for.
type Kind string

const (
	KindOrderConfirmed     Kind = "order.confirmed"
	KindOrderStatusChanged Kind = "order.status_changed"
)

// DeliveryStatus is the outcome recorded for a delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// Message is a customer notification travelling through the broker.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	OrderID   int64     `json:"order_id"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh ULID.
func NewMessage(kind Kind, orderID int64, phone, body string, now time.Time) Message {
	return Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Kind:      kind,
		OrderID:   orderID,
		Phone:     phone,
		Body:      body,
		CreatedAt: now,
	}
}

// LogEntry is one recorded delivery attempt.
type LogEntry struct {
	ID          int64
	MessageID   string
	OrderID     int64
	Phone       string
	MessageType Kind
	Content     string
	Status      DeliveryStatus
	Error       string
	SentAt      *time.Time
	CreatedAt   time.Time
}

package notification

import (
	"encoding/json"
	"math"
	"time"
)

// Pending is a notification parked for another attempt, either because the
// broker rejected it (outbox) or because delivery failed (inbox).
type Pending struct {
	ID            int64
	MessageID     string
	OrderID       int64
	Kind          Kind
	Payload       []byte
	Attempts      int
	MaxAttempts   int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

// Park wraps an encoded message that failed with cause. It is due immediately.
func Park(msg Message, payload []byte, maxAttempts int, cause error, now time.Time) Pending {
	return Pending{
		MessageID:     msg.ID,
		OrderID:       msg.OrderID,
		Kind:          msg.Kind,
		Payload:       payload,
		MaxAttempts:   maxAttempts,
		LastError:     cause.Error(),
		NextAttemptAt: now,
		CreatedAt:     now,
	}
}

// Decode returns the parked message.
func (p Pending) Decode() (Message, error) {
	var msg Message
	err := json.Unmarshal(p.Payload, &msg)

	return msg, err
}

// Failed records another failed attempt. The wait doubles with every attempt
// starting at 2*base.
func (p Pending) Failed(cause error, base time.Duration, now time.Time) Pending {
	p.Attempts++
	p.LastError = cause.Error()
	p.NextAttemptAt = now.Add(time.Duration(math.Pow(2, float64(p.Attempts)) * float64(base)))

	return p
}

// Exhausted reports whether no attempts remain.
func (p Pending) Exhausted() bool {
	return p.Attempts >= p.MaxAttempts
}

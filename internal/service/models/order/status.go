package order

import "errors"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending          Status = "pending"
	StatusConfirmed        Status = "confirmed"
	StatusInProgress       Status = "in_progress"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusCompleted        Status = "completed"
	StatusCancelled        Status = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

var transitions = map[Status][]Status{
	StatusPending:          {StatusConfirmed, StatusCancelled},
	StatusConfirmed:        {StatusInProgress, StatusCancelled},
	StatusInProgress:       {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusCompleted, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

// DisplayName is the label shown to customers.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusInProgress:
		return "In Progress"
	case StatusReadyForDelivery:
		return "Ready for Delivery"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusReadyForDelivery, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

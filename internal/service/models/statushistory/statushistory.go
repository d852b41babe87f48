package statushistory

import "time"

// Entry records one status an order entered.
type Entry struct {
	ID        int64
	OrderID   int64
	Status    string
	Notes     string
	CreatedAt time.Time
}

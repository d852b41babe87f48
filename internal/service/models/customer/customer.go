package customer

import "time"

// Customer is identified by its canonical phone number.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     string
	Address   string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Update carries the fields a repeat order may overwrite. Nil fields are left untouched.
type Update struct {
	Name    *string
	Email   *string
	Address *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Address == nil
}

// Apply returns c with the non-nil update fields written over it.
func (u Update) Apply(c Customer) Customer {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Address != nil {
		c.Address = *u.Address
	}

	return c
}

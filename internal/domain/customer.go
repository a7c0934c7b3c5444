package domain

import "time"

// Customer identifiers are caller-supplied and must be unique; a collision
// on create is reported as ErrCustomerExists, never overwritten.
type Customer struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

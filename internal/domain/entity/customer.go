package entity

import "time"

// Customer representa un cliente de la farmacia.
type Customer struct {
	ID          string
	ExternalKey string // documento de identidad o NIT
	Name        string
	Email       string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package models

import (
	"time"
)

// Admin defines the legacy administrator record based on the 'admins' table.
// Like Student, it predates the identity store and keeps an independently
// hashed password.
type Admin struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Name        string    `json:"name" db:"name" example:"System Administrator"`
	Username    string    `json:"username" db:"username" example:"admin"`
	Password    string    `json:"-" db:"password"` // Legacy hashed password (excluded from JSON)
	Role        Role      `json:"role" db:"role" example:"Admin"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number" example:"+15551234567"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
}

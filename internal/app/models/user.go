package models

import (
	"time"
)

// User defines the identity-store model based on the 'users' table. It is the
// source of truth for authentication and role once a legacy account has been
// migrated.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`                                                  // Unique identifier for the user
	Username    string     `json:"username" db:"username" example:"john.doe"`                               // Login name, unique within the identity store
	Email       string     `json:"email" db:"email" example:"john.doe@studentms.edu"`                       // User's email address
	Password    string     `json:"-" db:"password"`                                                         // User's hashed password (excluded from JSON)
	Name        string     `json:"name" db:"name" example:"John Doe"`                                       // Display name
	Role        Role       `json:"role" db:"role" example:"Student"`                                        // User's role (Admin or Student)
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`                // Timestamp when the user was created
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`                // Timestamp when the user was last updated
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2024-04-20T18:00:00Z"` // Timestamp of the last login (nullable)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student defines the legacy student record based on the 'students' table.
// It predates the identity store and carries its own password hash; username
// is the correlation key between the two, not a foreign key.
type Student struct {
	ID           int64           `json:"id" db:"id" example:"1"`
	Name         string          `json:"name" db:"name" example:"John Doe"`
	Username     string          `json:"username" db:"username" example:"john.doe"`
	Role         Role            `json:"role" db:"role" example:"Student"`
	Course       string          `json:"course" db:"course" example:"Software Engineering"`
	Semester     int             `json:"semester" db:"semester" example:"6"`
	CGPA         decimal.Decimal `json:"cgpa" db:"cgpa" example:"3.75"`
	DOB          time.Time       `json:"dob" db:"dob" example:"2002-05-14T00:00:00Z"`
	Hometown     string          `json:"hometown" db:"hometown" example:"Springfield"`
	PhoneNumber  string          `json:"phoneNumber" db:"phone_number" example:"+15551234567"`
	Password     string          `json:"-" db:"password"` // Legacy hashed password (excluded from JSON)
	DepartmentID int64           `json:"departmentId" db:"department_id" example:"1"`

	// Relation (populated when needed)
	Department *Department `json:"department,omitempty"`
}

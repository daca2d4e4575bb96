package models

// Department represents a department that students enroll in. Deleting a
// department with enrolled students is restricted.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

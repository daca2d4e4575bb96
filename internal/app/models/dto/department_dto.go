package dto

// DepartmentResponse represents a department in API responses.
type DepartmentResponse struct {
	ID           int64  `json:"id" example:"1"`
	Name         string `json:"name" example:"Computer Science"`
	StudentCount int    `json:"studentCount,omitempty" example:"12"`
}

// CreateDepartmentRequest represents the create-department payload.
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required" example:"Computer Science"`
}

// UpdateDepartmentRequest represents the rename-department payload.
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required" example:"Computer Science"`
}

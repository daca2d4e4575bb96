package dto

// StudentResponse represents a student record in API responses.
type StudentResponse struct {
	ID           int64               `json:"id" example:"7"`
	Name         string              `json:"name" example:"Jane Doe"`
	Username     string              `json:"username" example:"janedoe"`
	Role         string              `json:"role" example:"Student"`
	Course       string              `json:"course" example:"B.Tech CSE"`
	Semester     int                 `json:"semester" example:"4"`
	CGPA         string              `json:"cgpa" example:"3.75"`
	DOB          string              `json:"dob" example:"2003-06-15"`
	Hometown     string              `json:"hometown" example:"Pune"`
	PhoneNumber  string              `json:"phoneNumber" example:"+911234567890"`
	DepartmentID int64               `json:"departmentId" example:"1"`
	Department   *DepartmentResponse `json:"department,omitempty"`
}

// StudentListResponse wraps a page of student records.
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	Total    int               `json:"total" example:"37"`
}

// StudentFilterRequest represents the admin list filters.
type StudentFilterRequest struct {
	Search       string `form:"search" example:"doe"`
	DepartmentID int64  `form:"departmentId" example:"1"`
	MinCGPA      string `form:"minCgpa" example:"3.0"`
	Semester     int    `form:"semester" example:"4"`
}

// CreateStudentRequest represents the admin create-student payload.
type CreateStudentRequest struct {
	Name         string `json:"name" binding:"required" example:"Jane Doe"`
	Username     string `json:"username" binding:"required" example:"janedoe"`
	Role         string `json:"role" example:"Student"`
	Course       string `json:"course" binding:"required" example:"B.Tech CSE"`
	Semester     int    `json:"semester" binding:"required" example:"4"`
	CGPA         string `json:"cgpa" binding:"required" example:"3.75"`
	DOB          string `json:"dob" binding:"required" example:"2003-06-15"`
	Hometown     string `json:"hometown" binding:"required" example:"Pune"`
	PhoneNumber  string `json:"phoneNumber" binding:"required" example:"+911234567890"`
	Password     string `json:"password" binding:"required" example:"secret123"`
	DepartmentID int64  `json:"departmentId" binding:"required" example:"1"`
}

// UpdateStudentRequest represents the admin edit-student payload.
// Password is optional; an empty value keeps the stored hash.
type UpdateStudentRequest struct {
	Name         string `json:"name" binding:"required" example:"Jane Doe"`
	Username     string `json:"username" binding:"required" example:"janedoe"`
	Role         string `json:"role" example:"Student"`
	Course       string `json:"course" binding:"required" example:"B.Tech CSE"`
	Semester     int    `json:"semester" binding:"required" example:"4"`
	CGPA         string `json:"cgpa" binding:"required" example:"3.75"`
	DOB          string `json:"dob" binding:"required" example:"2003-06-15"`
	Hometown     string `json:"hometown" binding:"required" example:"Pune"`
	PhoneNumber  string `json:"phoneNumber" binding:"required" example:"+911234567890"`
	Password     string `json:"password" example:""`
	DepartmentID int64  `json:"departmentId" binding:"required" example:"1"`
}

// DeleteStudentResponse reports a completed delete. SelfDeleted tells
// the client the acting user removed their own record and must sign in
// again to continue.
type DeleteStudentResponse struct {
	Message     string `json:"message" example:"Student deleted"`
	SelfDeleted bool   `json:"selfDeleted" example:"false"`
}

// DashboardResponse represents the admin dashboard summary. Students
// carries the first records in name order.
type DashboardResponse struct {
	TotalStudents    int               `json:"totalStudents" example:"37"`
	TotalDepartments int               `json:"totalDepartments" example:"5"`
	Students         []StudentResponse `json:"students"`
}

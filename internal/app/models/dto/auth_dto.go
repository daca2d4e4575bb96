package dto

// LoginRequest represents the login form payload.
type LoginRequest struct {
	Username   string `json:"username" binding:"required" example:"admin"`
	Password   string `json:"password" binding:"required" example:"admin123"`
	RememberMe bool   `json:"rememberMe" example:"true"`
}

// RegisterRequest represents the student self-registration payload.
// CGPA travels as a string to preserve the exact decimal value.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required" example:"Jane Doe"`
	Username        string `json:"username" binding:"required" example:"janedoe"`
	Email           string `json:"email" binding:"required" example:"janedoe@studentms.edu"`
	Course          string `json:"course" binding:"required" example:"B.Tech CSE"`
	Semester        int    `json:"semester" binding:"required" example:"4"`
	CGPA            string `json:"cgpa" binding:"required" example:"3.75"`
	DOB             string `json:"dob" binding:"required" example:"2003-06-15"`
	Hometown        string `json:"hometown" binding:"required" example:"Pune"`
	PhoneNumber     string `json:"phoneNumber" binding:"required" example:"+911234567890"`
	Password        string `json:"password" binding:"required" example:"secret123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"secret123"`
	DepartmentID    int64  `json:"departmentId" binding:"required" example:"1"`
}

// TokenResponse represents the issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType" example:"Bearer"`
	ExpiresIn    int    `json:"expiresIn" example:"900"`
}

// LoginResponse carries the token pair plus where the client should land.
type LoginResponse struct {
	TokenResponse
	RedirectTo string `json:"redirectTo" example:"/admin/dashboard"`
}

// RefreshTokenRequest represents a token refresh payload.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserProfileResponse is the authenticated user's own profile: the
// student record joined with its department, plus the identity email.
type UserProfileResponse struct {
	StudentResponse
	Email string `json:"email" example:"janedoe@studentms.edu"`
}

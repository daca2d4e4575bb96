package services

import (
	"context"

	"github.com/yigit/studentms/internal/app/models/dto"
)

// IAuthService defines authentication and session operations
type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (*dto.UserProfileResponse, error)
}

// IStudentService defines student record administration operations
type IStudentService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
	GetStudents(ctx context.Context, filter *dto.StudentFilterRequest) (*dto.StudentListResponse, error)
	SearchByDepartment(ctx context.Context, department string) (*dto.StudentListResponse, error)
	GetStudent(ctx context.Context, id int64) (*dto.StudentResponse, error)
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	// DeleteStudent reports whether the deleted record belonged to the
	// acting user, so the caller can end that session.
	DeleteStudent(ctx context.Context, id int64, actorUsername string) (selfDeleted bool, err error)
}

// IDepartmentService defines department administration operations
type IDepartmentService interface {
	GetDepartments(ctx context.Context) ([]*dto.DepartmentResponse, error)
	CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id int64) error
}

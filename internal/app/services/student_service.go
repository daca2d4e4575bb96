package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/auth"
	"github.com/yigit/studentms/internal/pkg/validation"
)

// StudentService handles student record administration
type StudentService struct {
	studentRepo    repositories.IStudentRepository
	userRepo       repositories.IUserRepository
	adminRepo      repositories.IAdminRepository
	departmentRepo repositories.IDepartmentRepository
	logger         zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	userRepo repositories.IUserRepository,
	adminRepo repositories.IAdminRepository,
	departmentRepo repositories.IDepartmentRepository,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		userRepo:       userRepo,
		adminRepo:      adminRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

// GetDashboard returns record totals and the first students in name order
func (s *StudentService) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	totalStudents, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalDepartments, err := s.departmentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	listed, err := s.studentRepo.GetAll(ctx, repositories.StudentFilter{
		Limit: repositories.DefaultStudentListLimit,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		TotalStudents:    totalStudents,
		TotalDepartments: totalDepartments,
		Students:         toStudentResponses(listed),
	}, nil
}

// GetStudents returns student records matching the given filters
func (s *StudentService) GetStudents(ctx context.Context, filter *dto.StudentFilterRequest) (*dto.StudentListResponse, error) {
	repoFilter := repositories.StudentFilter{
		Search:       strings.TrimSpace(filter.Search),
		DepartmentID: filter.DepartmentID,
		Semester:     filter.Semester,
	}

	if filter.MinCGPA != "" {
		minCGPA, err := decimal.NewFromString(filter.MinCGPA)
		if err != nil {
			return nil, apperrors.NewValidationError("minCgpa must be a decimal number").WithField("minCgpa")
		}
		if !validation.ValidCGPA(minCGPA) {
			return nil, apperrors.NewValidationError("minCgpa must be between 0.00 and 4.00").WithField("minCgpa")
		}
		repoFilter.MinCGPA = &minCGPA
	}

	students, err := s.studentRepo.GetAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return &dto.StudentListResponse{
		Students: toStudentResponses(students),
		Total:    len(students),
	}, nil
}

// SearchByDepartment returns the student records enrolled in the named
// department. The name matches case-insensitively.
func (s *StudentService) SearchByDepartment(ctx context.Context, department string) (*dto.StudentListResponse, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, apperrors.NewValidationError("department cannot be empty").WithField("department")
	}

	students, err := s.studentRepo.GetAll(ctx, repositories.StudentFilter{DepartmentName: department})
	if err != nil {
		return nil, err
	}

	return &dto.StudentListResponse{
		Students: toStudentResponses(students),
		Total:    len(students),
	}, nil
}

// GetStudent returns a single student record
func (s *StudentService) GetStudent(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

// CreateStudent adds a student record on behalf of an administrator.
// No identity account is created here; one appears when the student
// first signs in.
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.validateStudentInput(ctx, studentInput{
		Name: req.Name, Username: req.Username, Role: req.Role,
		Course: req.Course, Semester: req.Semester, CGPA: req.CGPA,
		DOB: req.DOB, Hometown: req.Hometown, PhoneNumber: req.PhoneNumber,
		DepartmentID: req.DepartmentID,
	}, 0)
	if err != nil {
		return nil, err
	}

	if !validation.ValidPassword(req.Password) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength)).WithField("password")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	student.Password = hash

	id, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return nil, apperrors.NewConflictError("username is already taken").WithField("username")
		}
		return nil, err
	}
	student.ID = id

	s.logger.Info().Int64("studentID", id).Str("username", student.Username).Msg("Student record created")

	return s.GetStudent(ctx, id)
}

// UpdateStudent replaces a student record's fields. A role change is
// propagated to the student's identity account in a single transition,
// and a username change invalidates the old identity row so the next
// sign-in re-resolves under the new name.
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	existing, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student, err := s.validateStudentInput(ctx, studentInput{
		Name: req.Name, Username: req.Username, Role: req.Role,
		Course: req.Course, Semester: req.Semester, CGPA: req.CGPA,
		DOB: req.DOB, Hometown: req.Hometown, PhoneNumber: req.PhoneNumber,
		DepartmentID: req.DepartmentID,
	}, id)
	if err != nil {
		return nil, err
	}
	student.ID = id

	// Empty password keeps the stored hash.
	if req.Password != "" {
		if !validation.ValidPassword(req.Password) {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength)).WithField("password")
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		student.Password = hash
	} else {
		student.Password = existing.Password
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return nil, apperrors.NewConflictError("username is already taken").WithField("username")
		}
		return nil, err
	}

	if err := s.propagateIdentityChanges(ctx, existing, student); err != nil {
		return nil, err
	}

	return s.GetStudent(ctx, id)
}

// propagateIdentityChanges keeps the identity store consistent with an
// edited student record. The identity row is keyed by the record's
// previous username; a missing row just means the student never signed
// in since the identity store was introduced.
func (s *StudentService) propagateIdentityChanges(ctx context.Context, before, after *models.Student) error {
	user, err := s.userRepo.GetByUsername(ctx, before.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if before.Username != after.Username {
		// Drop the stale row entirely. Re-promotion on the next login
		// rebuilds it from the updated record, including the new hash.
		if err := s.userRepo.DeleteByUsername(ctx, before.Username); err != nil {
			return err
		}
		s.logger.Info().
			Str("oldUsername", before.Username).
			Str("newUsername", after.Username).
			Msg("Identity account dropped after username change")
		return nil
	}

	if user.Role != after.Role {
		if err := s.userRepo.UpdateRole(ctx, user.ID, after.Role); err != nil {
			return err
		}
		s.logger.Info().
			Int64("userID", user.ID).
			Str("role", string(after.Role)).
			Msg("Identity role updated")
	}

	return nil
}

// DeleteStudent removes a student record. The identity account survives
// unless the acting user removed their own record; that cascade takes
// the identity row and its refresh tokens with it, signing the user out
// everywhere.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64, actorUsername string) (bool, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return false, err
	}

	selfDeleted := student.Username == actorUsername
	if selfDeleted {
		if err := s.userRepo.DeleteByUsername(ctx, student.Username); err != nil {
			return false, err
		}
	}
	s.logger.Info().
		Int64("studentID", id).
		Str("username", student.Username).
		Bool("selfDeleted", selfDeleted).
		Msg("Student record deleted")

	return selfDeleted, nil
}

type studentInput struct {
	Name         string
	Username     string
	Role         string
	Course       string
	Semester     int
	CGPA         string
	DOB          string
	Hometown     string
	PhoneNumber  string
	DepartmentID int64
}

func (s *StudentService) validateStudentInput(ctx context.Context, in studentInput, excludeID int64) (*models.Student, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username cannot be empty").WithField("username")
	}
	if !validation.ValidPhoneNumber(in.PhoneNumber) {
		return nil, apperrors.NewValidationError("invalid phone number").WithField("phoneNumber")
	}
	if !validation.ValidSemester(in.Semester) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("semester must be between %d and %d", validation.SemesterMin, validation.SemesterMax)).WithField("semester")
	}

	cgpa, err := decimal.NewFromString(in.CGPA)
	if err != nil {
		return nil, apperrors.NewValidationError("cgpa must be a decimal number").WithField("cgpa")
	}
	if !validation.ValidCGPA(cgpa) {
		return nil, apperrors.NewValidationError("cgpa must be between 0.00 and 4.00").WithField("cgpa")
	}

	dob, err := time.Parse(dobFormat, in.DOB)
	if err != nil {
		return nil, apperrors.NewValidationError("dob must be formatted as YYYY-MM-DD").WithField("dob")
	}

	if _, err := s.departmentRepo.GetByID(ctx, in.DepartmentID); err != nil {
		if errors.Is(err, apperrors.ErrDepartmentNotFound) {
			return nil, apperrors.NewValidationError("department does not exist").WithField("departmentId")
		}
		return nil, err
	}

	taken, err := s.studentRepo.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return nil, err
	}
	if !taken {
		// An admin account with the same name would outrank this record
		// in the credential chain.
		taken, err = s.adminRepo.UsernameExists(ctx, username)
		if err != nil {
			return nil, err
		}
	}
	if taken {
		return nil, apperrors.NewConflictError("username is already taken").WithField("username")
	}

	return &models.Student{
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Role:         models.ParseRole(in.Role),
		Course:       strings.TrimSpace(in.Course),
		Semester:     in.Semester,
		CGPA:         cgpa,
		DOB:          dob,
		Hometown:     strings.TrimSpace(in.Hometown),
		PhoneNumber:  in.PhoneNumber,
		DepartmentID: in.DepartmentID,
	}, nil
}

func toStudentResponse(student *models.Student) dto.StudentResponse {
	resp := dto.StudentResponse{
		ID:           student.ID,
		Name:         student.Name,
		Username:     student.Username,
		Role:         string(student.Role),
		Course:       student.Course,
		Semester:     student.Semester,
		CGPA:         student.CGPA.StringFixed(2),
		DOB:          student.DOB.Format(dobFormat),
		Hometown:     student.Hometown,
		PhoneNumber:  student.PhoneNumber,
		DepartmentID: student.DepartmentID,
	}
	if student.Department != nil {
		resp.Department = &dto.DepartmentResponse{
			ID:   student.Department.ID,
			Name: student.Department.Name,
		}
	}
	return resp
}

func toStudentResponses(students []*models.Student) []dto.StudentResponse {
	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, toStudentResponse(student))
	}
	return responses
}

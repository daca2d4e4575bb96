package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
)

// DepartmentService handles department administration
type DepartmentService struct {
	departmentRepo repositories.IDepartmentRepository
	logger         zerolog.Logger
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(departmentRepo repositories.IDepartmentRepository, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

// GetDepartments returns all departments with their student counts
func (s *DepartmentService) GetDepartments(ctx context.Context) ([]*dto.DepartmentResponse, error) {
	departments, err := s.departmentRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DepartmentResponse, 0, len(departments))
	for _, department := range departments {
		count, err := s.departmentRepo.StudentCount(ctx, department.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, &dto.DepartmentResponse{
			ID:           department.ID,
			Name:         department.Name,
			StudentCount: count,
		})
	}

	return responses, nil
}

// CreateDepartment adds a new department
func (s *DepartmentService) CreateDepartment(ctx context.Context, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name cannot be empty").WithField("name")
	}

	department := &models.Department{Name: name}
	id, err := s.departmentRepo.Create(ctx, department)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("departmentID", id).Str("name", name).Msg("Department created")

	return &dto.DepartmentResponse{ID: id, Name: name}, nil
}

// UpdateDepartment renames a department
func (s *DepartmentService) UpdateDepartment(ctx context.Context, id int64, req *dto.UpdateDepartmentRequest) (*dto.DepartmentResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name cannot be empty").WithField("name")
	}

	if err := s.departmentRepo.Update(ctx, &models.Department{ID: id, Name: name}); err != nil {
		return nil, err
	}

	return &dto.DepartmentResponse{ID: id, Name: name}, nil
}

// DeleteDepartment removes a department. Departments with enrolled
// students are protected by the restricting foreign key.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("departmentID", id).Msg("Department deleted")
	return nil
}

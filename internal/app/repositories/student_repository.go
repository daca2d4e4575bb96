package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/dberrors"
)

const (
	// DefaultStudentListLimit caps the dashboard student query
	DefaultStudentListLimit = 50
	// MaxStudentListLimit caps the filtered admin list query
	MaxStudentListLimit = 200
)

// StudentFilter holds the optional admin list filters.
// DepartmentName is a case-insensitive exact match on the department.
type StudentFilter struct {
	Search         string
	DepartmentID   int64
	DepartmentName string
	MinCGPA        *decimal.Decimal
	Semester       int
	Limit          int
}

// IStudentRepository defines the interface for student record operations
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUsername(ctx context.Context, username string) (*models.Student, error)
	GetAll(ctx context.Context, filter StudentFilter) ([]*models.Student, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
}

// StudentRepository handles student record database operations
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

const studentColumns = `
	s.id, s.name, s.username, s.role, s.course, s.semester, s.cgpa::text,
	s.dob, s.hometown, s.phone_number, s.password, s.department_id, d.name`

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{Department: &models.Department{}}
	var cgpa string
	err := row.Scan(
		&student.ID, &student.Name, &student.Username, &student.Role,
		&student.Course, &student.Semester, &cgpa, &student.DOB,
		&student.Hometown, &student.PhoneNumber, &student.Password,
		&student.DepartmentID, &student.Department.Name)
	if err != nil {
		return nil, err
	}

	student.Department.ID = student.DepartmentID
	student.CGPA, err = decimal.NewFromString(cgpa)
	if err != nil {
		return nil, fmt.Errorf("invalid cgpa value %q: %w", cgpa, err)
	}

	return student, nil
}

// Create inserts a new student record and returns its ID
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	return insertStudent(ctx, r.db, student)
}

// CreateTx is Create running on an open transaction.
func (r *StudentRepository) CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) (int64, error) {
	return insertStudent(ctx, tx, student)
}

func insertStudent(ctx context.Context, q rowQuerier, student *models.Student) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO students (name, username, role, course, semester, cgpa, dob, hometown, phone_number, password, department_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		student.Name, student.Username, student.Role, student.Course, student.Semester,
		student.CGPA.String(), student.DOB, student.Hometown, student.PhoneNumber,
		student.Password, student.DepartmentID).Scan(&id)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_username_key") {
			return 0, apperrors.ErrUsernameTaken
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrDepartmentNotFound
		}
		return 0, fmt.Errorf("error creating student: %w", err)
	}

	return id, nil
}

// GetByID retrieves a student record with its department by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(r.db.QueryRow(ctx, `
		SELECT`+studentColumns+`
		FROM students s
		JOIN departments d ON d.id = s.department_id
		WHERE s.id = $1`,
		id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// GetByUsername retrieves a student record with its department by username
func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*models.Student, error) {
	student, err := scanStudent(r.db.QueryRow(ctx, `
		SELECT`+studentColumns+`
		FROM students s
		JOIN departments d ON d.id = s.department_id
		WHERE s.username = $1`,
		username))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// GetAll retrieves student records matching the given filters,
// name-ordered. The search term matches name, username, course,
// hometown and department name.
func (r *StudentRepository) GetAll(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	query := `
		SELECT` + studentColumns + `
		FROM students s
		JOIN departments d ON d.id = s.department_id
		WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (s.name ILIKE $%d OR s.username ILIKE $%d OR s.course ILIKE $%d OR s.hometown ILIKE $%d OR d.name ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.DepartmentID > 0 {
		query += fmt.Sprintf(" AND s.department_id = $%d", argIndex)
		args = append(args, filter.DepartmentID)
		argIndex++
	}

	if filter.DepartmentName != "" {
		query += fmt.Sprintf(" AND d.name ILIKE $%d", argIndex)
		args = append(args, filter.DepartmentName)
		argIndex++
	}

	if filter.MinCGPA != nil {
		query += fmt.Sprintf(" AND s.cgpa >= $%d", argIndex)
		args = append(args, filter.MinCGPA.String())
		argIndex++
	}

	if filter.Semester > 0 {
		query += fmt.Sprintf(" AND s.semester = $%d", argIndex)
		args = append(args, filter.Semester)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 || limit > MaxStudentListLimit {
		limit = MaxStudentListLimit
	}
	query += fmt.Sprintf(" ORDER BY s.name, s.id LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// Count returns the total number of student records
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}

	return count, nil
}

// Update replaces all mutable fields of a student record
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE students
		SET name = $1, username = $2, role = $3, course = $4, semester = $5,
		    cgpa = $6, dob = $7, hometown = $8, phone_number = $9, password = $10,
		    department_id = $11
		WHERE id = $12`,
		student.Name, student.Username, student.Role, student.Course, student.Semester,
		student.CGPA.String(), student.DOB, student.Hometown, student.PhoneNumber,
		student.Password, student.DepartmentID, student.ID)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_username_key") {
			return apperrors.ErrUsernameTaken
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error updating student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student record by ID
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM students WHERE id = $1`,
		id)

	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// UsernameExists checks if a username is already taken by another student record
func (r *StudentRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE username = $1 AND id <> $2)`,
		username, excludeID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking student username: %w", err)
	}

	return exists, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/dberrors"
)

// IAdminRepository defines the interface for legacy admin record operations
type IAdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// AdminRepository handles legacy admin record database operations
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
	}
}

// Create inserts a new admin record and returns its ID
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO admins (name, username, password, role, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		admin.Name, admin.Username, admin.Password, admin.Role, admin.PhoneNumber).Scan(&id)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "admins_username_key") {
			return 0, apperrors.ErrUsernameTaken
		}
		return 0, fmt.Errorf("error creating admin: %w", err)
	}

	return id, nil
}

// GetByUsername retrieves an admin record by username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admin := &models.Admin{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, username, password, role, phone_number, created_at
		FROM admins
		WHERE username = $1`,
		username).Scan(
		&admin.ID, &admin.Name, &admin.Username, &admin.Password,
		&admin.Role, &admin.PhoneNumber, &admin.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error retrieving admin: %w", err)
	}

	return admin, nil
}

// UsernameExists checks if a username already has an admin record
func (r *AdminRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM admins WHERE username = $1)`,
		username).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking admin username: %w", err)
	}

	return exists, nil
}

package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowQuerier is the slice of pgxpool.Pool and pgx.Tx the insert helpers
// need, so a create can run inside a caller's transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	StudentRepository    *StudentRepository
	AdminRepository      *AdminRepository
	DepartmentRepository *DepartmentRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		StudentRepository:    NewStudentRepository(db),
		AdminRepository:      NewAdminRepository(db),
		DepartmentRepository: NewDepartmentRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}

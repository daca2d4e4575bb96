package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/studentms/internal/app/models"
	appRepos "github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/auth"
)

// defaultDepartments is the baseline department list every fresh
// deployment starts with.
var defaultDepartments = []string{
	"Computer Science",
	"Information Technology",
	"Electronics Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
}

// Default admin credentials for a fresh deployment. The account lives
// in the legacy admins table and is promoted into the identity store on
// its first login.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// CreateDefaultData seeds the baseline departments and the default
// admin account if they don't exist. Failures are collected so a single
// bad row does not abort the rest of the seed.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	departmentRepo := appRepos.NewDepartmentRepository(dbPool)
	adminRepo := appRepos.NewAdminRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (departments, admin account)...")
	var finalErr error

	for _, name := range defaultDepartments {
		_, err := departmentRepo.Create(ctx, &appModels.Department{Name: name})
		if err != nil && !errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
			lgr.Error().Err(err).Str("department", name).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	exists, err := adminRepo.UsernameExists(ctx, DefaultAdminUsername)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if default admin exists")
		return errors.Join(finalErr, err)
	}
	if exists {
		return finalErr
	}

	lgr.Info().Msg("Creating default admin account...")

	hashedPassword, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default admin password")
		return errors.Join(finalErr, err)
	}

	_, err = adminRepo.Create(ctx, &appModels.Admin{
		Name:        "Administrator",
		Username:    DefaultAdminUsername,
		Password:    hashedPassword,
		Role:        appModels.RoleAdmin,
		PhoneNumber: "",
	})
	if err != nil && !errors.Is(err, apperrors.ErrUsernameTaken) {
		lgr.Error().Err(err).Msg("Error creating default admin account")
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

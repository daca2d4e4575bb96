package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
)

// Source identifies which credential store vouched for a sign-in.
type Source string

// Credential stores, in lookup order.
const (
	SourceIdentity      Source = "identity"
	SourceLegacyAdmin   Source = "legacy_admin"
	SourceLegacyStudent Source = "legacy_student"
)

// Email domains synthesized for accounts promoted out of the legacy tables.
const (
	legacyAdminEmailDomain   = "admin.studentms.edu"
	legacyStudentEmailDomain = "studentms.edu"
)

// Credential is an account as one store knows it. PasswordHash is the
// stored bcrypt hash; verification happens in the Authenticator.
type Credential struct {
	UserID       int64 // set only by the identity store
	Username     string
	Name         string
	Email        string
	Role         models.Role
	PasswordHash string
	Source       Source
}

// CredentialProvider looks a username up in a single credential store.
// A username the store has never seen returns apperrors.ErrAccountNotFound.
type CredentialProvider interface {
	Source() Source
	Lookup(ctx context.Context, username string) (*Credential, error)
}

// identityProvider reads the primary users table.
type identityProvider struct {
	users repositories.IUserRepository
}

// NewIdentityProvider creates the provider backed by the users table
func NewIdentityProvider(users repositories.IUserRepository) CredentialProvider {
	return &identityProvider{users: users}
}

func (p *identityProvider) Source() Source {
	return SourceIdentity
}

func (p *identityProvider) Lookup(ctx context.Context, username string) (*Credential, error) {
	user, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	return &Credential{
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		PasswordHash: user.Password,
		Source:       SourceIdentity,
	}, nil
}

// legacyAdminProvider reads the pre-migration admins table.
type legacyAdminProvider struct {
	admins repositories.IAdminRepository
}

// NewLegacyAdminProvider creates the provider backed by the admins table
func NewLegacyAdminProvider(admins repositories.IAdminRepository) CredentialProvider {
	return &legacyAdminProvider{admins: admins}
}

func (p *legacyAdminProvider) Source() Source {
	return SourceLegacyAdmin
}

func (p *legacyAdminProvider) Lookup(ctx context.Context, username string) (*Credential, error) {
	admin, err := p.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("legacy admin lookup: %w", err)
	}

	return &Credential{
		Username:     admin.Username,
		Name:         admin.Name,
		Email:        fmt.Sprintf("%s@%s", admin.Username, legacyAdminEmailDomain),
		Role:         models.RoleAdmin,
		PasswordHash: admin.Password,
		Source:       SourceLegacyAdmin,
	}, nil
}

// legacyStudentProvider reads the students table, which doubled as a
// credential store before identity accounts existed.
type legacyStudentProvider struct {
	students repositories.IStudentRepository
}

// NewLegacyStudentProvider creates the provider backed by the students table
func NewLegacyStudentProvider(students repositories.IStudentRepository) CredentialProvider {
	return &legacyStudentProvider{students: students}
}

func (p *legacyStudentProvider) Source() Source {
	return SourceLegacyStudent
}

func (p *legacyStudentProvider) Lookup(ctx context.Context, username string) (*Credential, error) {
	student, err := p.students.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("legacy student lookup: %w", err)
	}

	// The stored role carries over: a student record manually promoted to
	// Admin signs in as an admin.
	return &Credential{
		Username:     student.Username,
		Name:         student.Name,
		Email:        fmt.Sprintf("%s@%s", student.Username, legacyStudentEmailDomain),
		Role:         student.Role,
		PasswordHash: student.Password,
		Source:       SourceLegacyStudent,
	}, nil
}

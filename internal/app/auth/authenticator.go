package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	pkgauth "github.com/yigit/studentms/internal/pkg/auth"
	"github.com/yigit/studentms/internal/pkg/logger"
)

// Options controls chain behavior.
type Options struct {
	// LegacyFallbackOnMismatch lets a sign-in fall through to the legacy
	// tables when an identity account exists but its password does not
	// match. Off, an identity mismatch fails immediately.
	LegacyFallbackOnMismatch bool
}

// Authenticator verifies a username and password against an ordered
// chain of credential stores and promotes legacy matches into the
// identity store on first successful sign-in.
type Authenticator struct {
	providers []CredentialProvider
	users     repositories.IUserRepository
	opts      Options
}

// NewAuthenticator builds the standard three-store chain: identity
// first, then legacy admins, then legacy students.
func NewAuthenticator(
	users repositories.IUserRepository,
	admins repositories.IAdminRepository,
	students repositories.IStudentRepository,
	opts Options,
) *Authenticator {
	return &Authenticator{
		providers: []CredentialProvider{
			NewIdentityProvider(users),
			NewLegacyAdminProvider(admins),
			NewLegacyStudentProvider(students),
		},
		users: users,
		opts:  opts,
	}
}

// NewAuthenticatorWithProviders builds an Authenticator over an explicit
// provider chain. Order is precedence.
func NewAuthenticatorWithProviders(users repositories.IUserRepository, providers []CredentialProvider, opts Options) *Authenticator {
	return &Authenticator{
		providers: providers,
		users:     users,
		opts:      opts,
	}
}

// Authenticate walks the provider chain until one store both knows the
// username and accepts the password. Legacy matches are promoted into
// the identity store before the sign-in completes, so subsequent logins
// resolve at the first link. Blank input fails as a validation error;
// every other failed outcome collapses into
// apperrors.ErrInvalidCredentials, with storage faults surfacing
// separately.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required")
	}

	for _, provider := range a.providers {
		cred, err := provider.Lookup(ctx, username)
		if err != nil {
			if errors.Is(err, apperrors.ErrAccountNotFound) {
				continue
			}
			return nil, fmt.Errorf("%w: credential lookup failed: %v", apperrors.ErrStorage, err)
		}

		if !pkgauth.CheckPassword(cred.PasswordHash, password) {
			if cred.Source == SourceIdentity && !a.opts.LegacyFallbackOnMismatch {
				return nil, apperrors.ErrInvalidCredentials
			}
			continue
		}

		if cred.Source == SourceIdentity {
			return a.users.GetByUsername(ctx, username)
		}

		user, err := a.promote(ctx, cred)
		if err != nil {
			return nil, err
		}

		logger.Info().
			Str("username", username).
			Str("source", string(cred.Source)).
			Msg("Promoted legacy account to identity store")

		return user, nil
	}

	return nil, apperrors.ErrInvalidCredentials
}

// promote creates an identity account from a verified legacy credential.
// The users table has a unique constraint on username, so two concurrent
// first logins race cleanly: the loser re-reads the winner's row and
// signs in as it.
func (a *Authenticator) promote(ctx context.Context, cred *Credential) (*models.User, error) {
	user := &models.User{
		Username: cred.Username,
		Email:    cred.Email,
		Password: cred.PasswordHash,
		Name:     cred.Name,
		Role:     cred.Role,
	}

	id, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			existing, lookupErr := a.users.GetByUsername(ctx, cred.Username)
			if lookupErr != nil {
				return nil, fmt.Errorf("%w: identity account vanished after conflict: %v", apperrors.ErrProvisioning, lookupErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%w: could not promote %s account: %v", apperrors.ErrProvisioning, cred.Source, err)
	}

	user.ID = id
	return user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appauth "github.com/yigit/studentms/internal/app/auth"
	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/db"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/auth"
	"github.com/yigit/studentms/internal/pkg/validation"
)

// TxRunner runs a function inside a single database transaction.
// *db.PostgresDB satisfies it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// Landing paths returned after a successful sign-in.
const (
	RedirectAdminDashboard = "/admin/dashboard"
	RedirectProfile        = "/me"
)

// dobFormat is the wire format for dates of birth.
const dobFormat = "2006-01-02"

// AuthService handles registration, sign-in and session lifecycle
type AuthService struct {
	authenticator  *appauth.Authenticator
	userRepo       repositories.IUserRepository
	studentRepo    repositories.IStudentRepository
	adminRepo      repositories.IAdminRepository
	departmentRepo repositories.IDepartmentRepository
	tokenRepo      repositories.ITokenRepository
	tx             TxRunner
	jwtService     *auth.JWTService
	logger         zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	authenticator *appauth.Authenticator,
	userRepo repositories.IUserRepository,
	studentRepo repositories.IStudentRepository,
	adminRepo repositories.IAdminRepository,
	departmentRepo repositories.IDepartmentRepository,
	tokenRepo repositories.ITokenRepository,
	tx TxRunner,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		authenticator:  authenticator,
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		adminRepo:      adminRepo,
		departmentRepo: departmentRepo,
		tokenRepo:      tokenRepo,
		tx:             tx,
		jwtService:     jwtService,
		logger:         logger,
	}
}

// Register creates a student record together with its identity account
// and signs the new student in. The two inserts commit or roll back as
// one, and each store hashes the plaintext on its own.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	student, err := s.validateRegistration(ctx, req)
	if err != nil {
		return nil, err
	}

	studentHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	student.Password = studentHash

	userHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The identity account is created eagerly so the first login does
	// not go through the legacy promotion path.
	user := &models.User{
		Username: student.Username,
		Email:    strings.TrimSpace(req.Email),
		Password: userHash,
		Name:     student.Name,
		Role:     models.RoleStudent,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.studentRepo.CreateTx(ctx, tx, student); err != nil {
			return err
		}
		userID, err := s.userRepo.CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user.ID = userID
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return nil, apperrors.NewConflictError("username is already taken").WithField("username")
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProvisioning, err)
	}

	s.logger.Info().Str("username", user.Username).Msg("Student registered")

	return s.issueSession(ctx, user, false)
}

// Login verifies credentials against the full credential chain and
// issues a session for the matched account.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.authenticator.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is best effort.
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	return s.issueSession(ctx, user, req.RememberMe)
}

// RefreshToken rotates a refresh token: the presented token is revoked
// and a new pair is issued with the same expiry window.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, expiryDate, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	accessToken, newRefreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, newRefreshToken, user.ID, expiryDate); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}

// Logout revokes every live refresh token of the user
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
}

// GetProfile returns the caller's student record joined with its
// department, resolved through the session identity's username. An
// account without a student record, such as a pure admin, gets
// apperrors.ErrStudentNotFound.
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.UserProfileResponse{
		StudentResponse: toStudentResponse(student),
		Email:           user.Email,
	}, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, rememberMe bool) (*dto.LoginResponse, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	expiry := s.jwtService.GetRefreshTokenExpiry(rememberMe)
	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, expiry); err != nil {
		return nil, err
	}

	redirect := RedirectProfile
	if user.Role.IsAdmin() {
		redirect = RedirectAdminDashboard
	}

	return &dto.LoginResponse{
		TokenResponse: dto.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    expiresIn,
		},
		RedirectTo: redirect,
	}, nil
}

func (s *AuthService) validateRegistration(ctx context.Context, req *dto.RegisterRequest) (*models.Student, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username cannot be empty").WithField("username")
	}

	if !validation.ValidEmail(strings.TrimSpace(req.Email)) {
		return nil, apperrors.NewValidationError("invalid email address").WithField("email")
	}
	if !validation.ValidPassword(req.Password) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", validation.PasswordMinLength)).WithField("password")
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.NewValidationError("passwords do not match").WithField("confirmPassword")
	}
	if !validation.ValidPhoneNumber(req.PhoneNumber) {
		return nil, apperrors.NewValidationError("invalid phone number").WithField("phoneNumber")
	}
	if !validation.ValidSemester(req.Semester) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("semester must be between %d and %d", validation.SemesterMin, validation.SemesterMax)).WithField("semester")
	}

	cgpa, err := decimal.NewFromString(req.CGPA)
	if err != nil {
		return nil, apperrors.NewValidationError("cgpa must be a decimal number").WithField("cgpa")
	}
	if !validation.ValidCGPA(cgpa) {
		return nil, apperrors.NewValidationError("cgpa must be between 0.00 and 4.00").WithField("cgpa")
	}

	dob, err := time.Parse(dobFormat, req.DOB)
	if err != nil {
		return nil, apperrors.NewValidationError("dob must be formatted as YYYY-MM-DD").WithField("dob")
	}

	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, apperrors.ErrDepartmentNotFound) {
			return nil, apperrors.NewValidationError("department does not exist").WithField("departmentId")
		}
		return nil, err
	}

	// The username must be free in every credential store, not just the
	// students table, or a later login would resolve to someone else.
	for _, check := range []func(context.Context, string) (bool, error){
		func(ctx context.Context, u string) (bool, error) { return s.studentRepo.UsernameExists(ctx, u, 0) },
		s.adminRepo.UsernameExists,
		s.userRepo.UsernameExists,
	} {
		taken, err := check(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewConflictError("username is already taken").WithField("username")
		}
	}

	return &models.Student{
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Role:         models.RoleStudent,
		Course:       strings.TrimSpace(req.Course),
		Semester:     req.Semester,
		CGPA:         cgpa,
		DOB:          dob,
		Hometown:     strings.TrimSpace(req.Hometown),
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: req.DepartmentID,
	}, nil
}

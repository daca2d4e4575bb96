package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/pkg/apperrors"
	"github.com/yigit/studentms/internal/pkg/logger"
)

// HandleAPIError maps service errors onto HTTP responses. Credential
// and authorization failures stay generic; validation and conflict
// errors carry the offending field when the service named one.
func HandleAPIError(c *gin.Context, err error) {
	var customErr *apperrors.CustomError
	field := ""
	message := ""
	if errors.As(err, &customErr) {
		field = customErr.Field
		message = customErr.Message
	}

	withField := func(d *dto.ErrorDetail) *dto.ErrorDetail {
		if field != "" {
			d = d.WithField(field)
		}
		return d
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed) || errors.Is(err, apperrors.ErrBadRequest):
		if message == "" {
			message = "Validation failed"
		}
		c.JSON(400, dto.NewErrorResponse(withField(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message))))

	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrUsernameTaken),
		errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		if message == "" {
			message = "Resource already exists"
		}
		c.JSON(409, dto.NewErrorResponse(withField(dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message))))

	case errors.Is(err, apperrors.ErrDepartmentHasStudents):
		c.JSON(409, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceInUse, "Department has enrolled students and cannot be deleted")))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(401, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid username or password")))

	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(401, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))

	case errors.Is(err, apperrors.ErrTokenRevoked):
		c.JSON(401, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Token revoked")))

	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenNotFound):
		c.JSON(401, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(403, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")))

	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrDepartmentNotFound):
		if message == "" {
			message = "Resource not found"
		}
		c.JSON(404, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)))

	case errors.Is(err, apperrors.ErrProvisioning), errors.Is(err, apperrors.ErrStorage):
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Backend store failure")
		c.JSON(500, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "System temporarily unavailable")))

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		c.JSON(500, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}

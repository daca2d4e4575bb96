package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/studentms/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		RememberMeExp:   90 * 24 * time.Hour,
		TokenIssuer:     "studentms-test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testService(15 * time.Minute)
	user := &models.User{ID: 7, Username: "janedoe", Role: models.RoleStudent}

	accessToken, refreshToken, expiresIn, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshToken)
	assert.Equal(t, int((15 * time.Minute).Seconds()), expiresIn)

	claims, err := svc.ValidateAndExtractClaims(accessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "janedoe", claims.Username)
	assert.Equal(t, "Student", claims.Role)
	assert.Equal(t, "studentms-test", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := testService(-1 * time.Minute)
	user := &models.User{ID: 7, Username: "janedoe", Role: models.RoleStudent}

	accessToken, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := testService(15 * time.Minute)
	user := &models.User{ID: 7, Username: "janedoe", Role: models.RoleStudent}

	accessToken, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "different-secret", AccessTokenExp: 15 * time.Minute})
	_, err = other.ValidateToken(accessToken)
	assert.Error(t, err)
}

func TestValidateAndExtractClaims_Empty(t *testing.T) {
	svc := testService(15 * time.Minute)
	_, err := svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetRefreshTokenExpiry(t *testing.T) {
	svc := testService(15 * time.Minute)

	standard := svc.GetRefreshTokenExpiry(false)
	persistent := svc.GetRefreshTokenExpiry(true)

	assert.WithinDuration(t, time.Now().Add(24*time.Hour), standard, time.Minute)
	assert.WithinDuration(t, time.Now().Add(90*24*time.Hour), persistent, time.Minute)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

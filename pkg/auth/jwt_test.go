package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccsfp/clinic-api/pkg/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour)

	token, err := svc.GenerateToken("jdoe", "staff")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "staff", claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour)
	other := auth.NewJWTService("different", time.Hour)

	token, err := svc.GenerateToken("jdoe", "staff")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "jdoe",
		"role": "staff",
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

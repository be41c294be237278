package auth

import (
	"testing"
	"time"

	"franchise-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func TestGenerateTokenRoundTrip(t *testing.T) {
	branchID := uint(12)
	user := &models.User{
		ID:       34,
		Email:    "owner@branch.example",
		Role:     models.RoleBranchOwner,
		BranchID: &branchID,
	}

	signed, err := GenerateToken(testSecret, user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	token, err := jwt.ParseWithClaims(signed, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*JWTCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(34), claims.UserID)
	assert.Equal(t, "owner@branch.example", claims.Email)
	assert.Equal(t, models.RoleBranchOwner, claims.Role)
	require.NotNil(t, claims.BranchID)
	assert.Equal(t, branchID, *claims.BranchID)
	assert.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Equal(t, "34", claims.Subject)
	assert.NotNil(t, claims.NotBefore)
}

func TestForeignIssuerRefused(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTCustomClaims{
		UserID: 1,
		Role:   models.RoleFranchisor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "some-other-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	assert.Error(t, err)
}

func TestGenerateTokenWrongSecretFails(t *testing.T) {
	user := &models.User{ID: 1, Email: "hq@brand.example", Role: models.RoleFranchisor}

	signed, err := GenerateToken(testSecret, user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(signed, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("a-completely-different-secret-0123456789"), nil
	})
	assert.Error(t, err)
}

package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-substitution-api/internal/models"
	appErrors "github.com/noah-isme/sma-substitution-api/pkg/errors"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "sma-substitution-api"})
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestAuthService()

	issued, err := svc.IssueToken(IssueTokenRequest{Subject: "coordinator-1", Role: "coordinator", FullName: "Duty Desk"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoordinator, claims.Role)
	assert.Equal(t, "coordinator-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueTokenValidation(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.IssueToken(IssueTokenRequest{Subject: "x", Role: "PRINCIPAL"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.IssueToken(IssueTokenRequest{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	unsigned := NewAuthService(nil, nil, AuthConfig{})
	_, err = unsigned.IssueToken(IssueTokenRequest{Subject: "x", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestValidateTokenRejections(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "sma-substitution-api"})
	issued, err := other.IssueToken(IssueTokenRequest{Subject: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	expired := newTestAuthService()
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.IssueToken(IssueTokenRequest{Subject: "x", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	signed, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

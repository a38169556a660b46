package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/internal/models"
	appErrors "github.com/noah-isme/sportsgrades-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "lms"})
	token, err := svc.IssueToken(models.User{ID: 7, Username: "coach", FirstName: "Pat", LastName: "Lee"}, models.RoleMentor, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleMentor, claims.Role)
	assert.Equal(t, models.Requester{UserID: 7, Username: "coach", Role: models.RoleMentor}, claims.Requester())
}

func TestTokenServiceRejectsWrongSecretAndIssuer(t *testing.T) {
	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "lms"})
	token, err := other.IssueToken(models.User{ID: 7}, models.RoleMentor, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "secret", Issuer: "lms"}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = NewTokenService(TokenConfig{Secret: "other", Issuer: "portal"}).ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestTokenServiceRejectsExpiredAndForeignAlgorithm(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.IssueToken(models.User{ID: 7}, models.RoleMentor, time.Hour)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: 7})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(raw)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

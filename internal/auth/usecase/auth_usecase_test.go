package usecase

import (
	"testing"
	"time"

	authdomain "flux-backend/internal/auth/domain"
	authdto "flux-backend/internal/auth/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, password string) (*authUsecase, *time.Time) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)
	u := &authUsecase{
		passwordHash: string(hash),
		secret:       []byte("test-secret"),
		accessExpiry: time.Hour,
		now:          func() time.Time { return now },
	}
	return u, &now
}

func TestLoginIssuesValidToken(t *testing.T) {
	u, now := newTestAuth(t, "987654321")

	resp, err := u.Login(&authdto.LoginRequest{Password: "987654321"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, now.Add(time.Hour), resp.ExpiresAt)

	session, err := u.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, now.Unix(), session.IssuedAt.Unix())
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	u, _ := newTestAuth(t, "987654321")

	_, err := u.Login(&authdto.LoginRequest{Password: "123"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidPassword)

	u.passwordHash = ""
	_, err = u.Login(&authdto.LoginRequest{Password: "987654321"})
	assert.ErrorIs(t, err, authdomain.ErrAuthNotConfigured)
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	u, now := newTestAuth(t, "pw")
	resp, err := u.Login(&authdto.LoginRequest{Password: "pw"})
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	_, err = u.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: "x"})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = u.ValidateToken(signed)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	_, err = u.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("Secret", hash))
}

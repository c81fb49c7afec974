package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                testSecret,
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNewJWTService(t *testing.T) {
	svc := newTestJWTService()
	assert.Equal(t, []byte(testSecret), svc.secret)
	assert.Equal(t, "test-issuer", svc.issuer)
	assert.Equal(t, 15*time.Minute, svc.GetAccessTokenExpiration())
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.IssueToken("user_2abc", "nicki@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.True(t, issued.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.UserID())
	assert.Equal(t, "nicki@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
}

func TestValidateAccessToken_UserIDClaim(t *testing.T) {
	svc := newTestJWTService()
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserIDClaim:      "legacy-user",
	})

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "legacy-user", claims.UserID())
}

func TestValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "garbage",
			token: "invalid-token",
			want:  ErrInvalidToken,
		},
		{
			name: "expired",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}}),
			want: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u",
				NotBefore: future,
			}}),
			want: ErrTokenNotYetValid,
		},
		{
			name: "wrong secret",
			token: sign(t, jwt.SigningMethodHS256, []byte("another-secret-of-sufficient-size"), &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u",
			}}),
			want: ErrInvalidToken,
		},
		{
			name: "other hmac algorithm",
			token: sign(t, jwt.SigningMethodHS512, []byte(testSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u",
			}}),
			want: ErrInvalidToken,
		},
		{
			name:  "no user id",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{Email: "x@example.com"}),
			want:  ErrMissingUserID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMissingSecret(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{})

	_, err := svc.ValidateAccessToken("a.b.c")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.IssueToken("u", "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueToken_RequiresUserID(t *testing.T) {
	_, err := newTestJWTService().IssueToken("", "x@example.com")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key []byte, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return "Bearer " + s
}

func TestIssueToken(t *testing.T) {
	_, err := IssueToken(nil, "x", RoleAdmin, time.Hour)
	assert.Error(t, err)

	_, err = IssueToken(testSecret, "x", "superuser", time.Hour)
	assert.Error(t, err)

	tok, err := IssueToken(testSecret, "x", RoleViewer, time.Hour)
	require.NoError(t, err)

	claims, err := parseBearer("Bearer "+tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "x", claims.Subject)
	assert.Equal(t, RoleViewer, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseBearer_Rejects(t *testing.T) {
	hour := jwt.NewNumericDate(time.Now().Add(time.Hour))
	valid := func(sub, role string) Claims {
		return Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub, ExpiresAt: hour}}
	}
	expired, err := IssueToken(testSecret, "old", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"empty", "", ErrMissingToken},
		{"basic scheme", "Basic abc", ErrMissingToken},
		{"bearer without token", "Bearer  ", ErrMissingToken},
		{"expired", "Bearer " + expired, ErrInvalidToken},
		{"hs512", sign(t, jwt.SigningMethodHS512, testSecret, valid("x", RoleAdmin)), ErrInvalidToken},
		{"other key", sign(t, jwt.SigningMethodHS256, []byte("another-secret"), valid("x", RoleAdmin)), ErrInvalidToken},
		{"no expiry", sign(t, jwt.SigningMethodHS256, testSecret, Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}}), ErrInvalidToken},
		{"no subject", sign(t, jwt.SigningMethodHS256, testSecret, valid("", RoleAdmin)), ErrInvalidToken},
		{"unknown role", sign(t, jwt.SigningMethodHS256, testSecret, valid("x", "root")), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBearer(tt.header, testSecret)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

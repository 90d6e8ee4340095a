package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

const testProject = "contentpilot-test"

func newTestVerifier(t *testing.T) (JWTVerifier, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	kf := func(token *jwt.Token) (interface{}, error) {
		if token.Header["kid"] != "k1" {
			return nil, errors.New("unknown kid")
		}
		return &key.PublicKey, nil
	}
	v, err := NewJWTVerifierWithKeyfunc(kf, testProject, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return v, key
}

func sign(t *testing.T, key *rsa.PrivateKey, claims *models.IdentityClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "k1"
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() *models.IdentityClaims {
	now := time.Now()
	return &models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-123",
			Issuer:    issuerPrefix + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "ada@example.com",
	}
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)

	tests := []struct {
		name    string
		mutate  func(c *models.IdentityClaims)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *models.IdentityClaims) {}},
		{name: "wrong audience", mutate: func(c *models.IdentityClaims) { c.Audience = jwt.ClaimStrings{"other"} }, wantErr: true},
		{name: "wrong issuer", mutate: func(c *models.IdentityClaims) { c.Issuer = "https://evil.example.com" }, wantErr: true},
		{name: "expired", mutate: func(c *models.IdentityClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }, wantErr: true},
		{name: "missing expiry", mutate: func(c *models.IdentityClaims) { c.ExpiresAt = nil }, wantErr: true},
		{name: "missing subject", mutate: func(c *models.IdentityClaims) { c.Subject = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)

			got, err := v.VerifyToken(sign(t, key, claims))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "uid-123", got.GetUserID())
			assert.Equal(t, "ada@example.com", got.Email)
		})
	}
}

func TestVerifyToken_RejectsHMAC(t *testing.T) {
	v, _ := newTestVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	token.Header["kid"] = "k1"
	s, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.VerifyToken(s)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerifyToken_Garbage(t *testing.T) {
	v, _ := newTestVerifier(t)
	_, err := v.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

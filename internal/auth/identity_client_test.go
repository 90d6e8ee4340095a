package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
)

func newIdentityServer(t *testing.T, handler http.HandlerFunc) *IdentityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewIdentityClient(srv.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIdentityClient_SignIn(t *testing.T) {
	client := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body passwordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body.Email)
		assert.True(t, body.ReturnSecureToken)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"idToken":"tok","refreshToken":"ref","localId":"uid-1","email":"ada@example.com","expiresIn":"3600"}`))
	})

	session, err := client.SignIn(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.IDToken)
	assert.Equal(t, "uid-1", session.UserID)
	assert.Equal(t, "3600", session.ExpiresIn)
}

func TestIdentityClient_SignInWithIDP(t *testing.T) {
	client := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithIdp", r.URL.Path)

		var body idpRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		values, err := url.ParseQuery(body.PostBody)
		require.NoError(t, err)
		assert.Equal(t, "google-token", values.Get("id_token"))
		assert.Equal(t, "google.com", values.Get("providerId"))
		assert.Equal(t, "http://localhost", body.RequestURI)

		_, _ = w.Write([]byte(`{"idToken":"tok","localId":"uid-2","isNewUser":true}`))
	})

	session, err := client.SignInWithIDP(context.Background(), "google.com", "google-token", "http://localhost")
	require.NoError(t, err)
	assert.True(t, session.IsNewUser)
	assert.Equal(t, "uid-2", session.UserID)
}

func TestIdentityClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		message string
		check   func(t *testing.T, err error)
	}{
		{"EMAIL_EXISTS", func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrConflict) }},
		{"INVALID_LOGIN_CREDENTIALS", func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrUnauthorized) }},
		{"WEAK_PASSWORD : Password should be at least 6 characters", func(t *testing.T, err error) {
			var fe *domain.FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, fe.Fields, "password")
		}},
		{"SOMETHING_NEW", func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrUpstream) }},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			client := newIdentityServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": 400, "message": tt.message},
				})
			})
			_, err := client.SignUp(context.Background(), "ada@example.com", "pw")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

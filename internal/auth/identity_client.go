package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

// IdentityClient talks to the Identity Toolkit REST API behind Firebase Authentication.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewIdentityClient creates a client for baseURL (normally https://identitytoolkit.googleapis.com/v1).
func NewIdentityClient(baseURL, apiKey string, logger *slog.Logger) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type sessionResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
	IsNewUser    bool   `json:"isNewUser"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUp creates an email/password account
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*models.AuthSession, error) {
	session, err := c.call(ctx, "accounts:signUp", passwordRequest{
		Email: email, Password: password, ReturnSecureToken: true,
	})
	if err != nil {
		return nil, err
	}
	session.IsNewUser = true
	return session, nil
}

// SignIn exchanges email and password for an ID token
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	return c.call(ctx, "accounts:signInWithPassword", passwordRequest{
		Email: email, Password: password, ReturnSecureToken: true,
	})
}

// SignInWithIDP exchanges a federated provider ID token for a session
func (c *IdentityClient) SignInWithIDP(ctx context.Context, providerID, providerToken, requestURI string) (*models.AuthSession, error) {
	postBody := url.Values{}
	postBody.Set("id_token", providerToken)
	postBody.Set("providerId", providerID)

	return c.call(ctx, "accounts:signInWithIdp", idpRequest{
		PostBody:            postBody.Encode(),
		RequestURI:          requestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	})
}

func (c *IdentityClient) call(ctx context.Context, method string, payload any) (*models.AuthSession, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", method, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		c.logger.Warn("identity request failed", "method", method, "status", resp.StatusCode, "code", apiErr.Error.Message)
		return nil, mapIdentityError(apiErr.Error.Message, resp.StatusCode)
	}

	var session sessionResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	return &models.AuthSession{
		IDToken:      session.IDToken,
		RefreshToken: session.RefreshToken,
		UserID:       session.LocalID,
		Email:        session.Email,
		ExpiresIn:    session.ExpiresIn,
		IsNewUser:    session.IsNewUser,
	}, nil
}

// mapIdentityError converts Identity Toolkit error codes. Messages look like
// "WEAK_PASSWORD : Password should be at least 6 characters".
func mapIdentityError(message string, status int) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "EMAIL_EXISTS":
		return &domain.ConflictError{Message: "an account already exists for this email", ResourceType: "user"}
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_IDP_RESPONSE":
		return fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return domain.FieldError("email", "invalid email address")
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return domain.FieldError("password", "password must be at least 6 characters")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return fmt.Errorf("%w: too many attempts, try again later", domain.ErrUpstream)
	}
	return fmt.Errorf("%w: identity provider returned %d %s", domain.ErrUpstream, status, message)
}

package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"contentpilot/internal/auth"
	"contentpilot/internal/domain"
	"contentpilot/internal/httputil"
)

// googleProviderID is the identity provider id for Google federated sign-in.
const googleProviderID = "google.com"

// AuthHandler proxies sign-up and sign-in to the identity provider
type AuthHandler struct {
	identity auth.IdentityProvider
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity auth.IdentityProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		logger:   logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c credentialsRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 0)),
	)
}

type googleRequest struct {
	IDToken    string `json:"id_token"`
	RequestURI string `json:"request_uri"`
}

// SignUp creates an account
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !parseBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleError(w, domain.ValidationFailed(err))
		return
	}

	session, err := h.identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("user signed up", "user_id", session.UserID)
	httputil.RespondJSON(w, http.StatusCreated, session)
}

// SignIn exchanges email and password for a session
// POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !parseBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		handleError(w, domain.ValidationFailed(err))
		return
	}

	session, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// SignInWithGoogle exchanges a Google ID token for a session
// POST /api/auth/google
func (h *AuthHandler) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if !parseBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.IDToken, validation.Required),
	); err != nil {
		handleError(w, domain.ValidationFailed(err))
		return
	}

	requestURI := req.RequestURI
	if requestURI == "" {
		requestURI = "http://localhost"
	}

	session, err := h.identity.SignInWithIDP(r.Context(), googleProviderID, req.IDToken, requestURI)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// Me returns the authenticated identity
// GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		handleError(w, domain.ErrUnauthorized)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"email":   httputil.GetUserEmail(r),
	})
}

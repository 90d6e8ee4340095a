package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

const issuerPrefix = "https://securetoken.google.com/"

// FirebaseJWTVerifier implements JWTVerifier for Firebase Authentication ID tokens.
type FirebaseJWTVerifier struct {
	keyfunc   jwt.Keyfunc
	projectID string
	logger    *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from the JWKS endpoint.
// keyfunc caches the keys and refreshes them based on HTTP cache headers.
func NewJWTVerifier(ctx context.Context, jwksURL, projectID string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL, "project_id", projectID)
	return NewJWTVerifierWithKeyfunc(jwks.Keyfunc, projectID, logger)
}

// NewJWTVerifierWithKeyfunc builds a verifier around an existing key lookup.
func NewJWTVerifierWithKeyfunc(kf jwt.Keyfunc, projectID string, logger *slog.Logger) (JWTVerifier, error) {
	if projectID == "" {
		return nil, errors.New("project ID cannot be empty")
	}
	return &FirebaseJWTVerifier{
		keyfunc:   kf,
		projectID: projectID,
		logger:    logger,
	}, nil
}

// VerifyToken validates signature, expiry, issuer and audience, and requires a subject.
func (v *FirebaseJWTVerifier) VerifyToken(tokenString string) (*models.IdentityClaims, error) {
	// Only RS256 is accepted, which also blocks algorithm confusion
	token, err := jwt.ParseWithClaims(tokenString, &models.IdentityClaims{}, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.IdentityClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op: keyfunc v3 manages its own refresh goroutine through the context.
func (v *FirebaseJWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

package auth

import (
	"context"

	"contentpilot/internal/domain/models"
)

// JWTVerifier defines the interface for ID token verification.
// The middleware stays agnostic to how keys are fetched and checked.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}

// IdentityProvider creates accounts and exchanges credentials for ID tokens.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*models.AuthSession, error)
	// SignInWithIDP exchanges a federated provider token (e.g. a Google ID token) for a session
	SignInWithIDP(ctx context.Context, providerID, providerToken, requestURI string) (*models.AuthSession, error)
}

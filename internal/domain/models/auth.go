package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the ID token issued by the identity provider (Firebase Authentication).
// See: https://firebase.google.com/docs/auth/admin/verify-id-tokens
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email         string           `json:"email"`
	EmailVerified bool             `json:"email_verified"`
	Name          string           `json:"name,omitempty"`
	Picture       string           `json:"picture,omitempty"`
	AuthTime      int64            `json:"auth_time"`
	Firebase      FirebaseMetadata `json:"firebase"`
}

// FirebaseMetadata is the "firebase" claim block.
type FirebaseMetadata struct {
	SignInProvider string              `json:"sign_in_provider"`
	Identities     map[string][]string `json:"identities,omitempty"`
}

// GetUserID returns the owner id carried in the subject claim.
func (c *IdentityClaims) GetUserID() string {
	return c.Subject
}

// AuthSession is returned by sign-in and sign-up.
type AuthSession struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expires_in"`
	IsNewUser    bool   `json:"is_new_user,omitempty"`
}

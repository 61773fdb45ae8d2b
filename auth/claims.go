package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload of an ideaswipe session. The verified
// email is the acting-user identity for every other component. The token is
// signed, not encrypted: it carries no provider credential.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	DisplayName  string `json:"display_name,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	AuthProvider string `json:"auth_provider,omitempty"` // "google"
}

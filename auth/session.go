package auth

import "context"

// Session is the authenticated identity of the acting user. It is never
// persisted; it lives as long as the session token. AccessToken is only set
// on the Session returned by SignIn and is empty on request sessions.
type Session struct {
	Email       string `json:"email"`
	AccessToken string `json:"-"`
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// CurrentSession returns the session placed in ctx by Middleware, or nil
// when the request is unauthenticated.
func CurrentSession(ctx context.Context) *Session {
	c := GetClaims(ctx)
	if c == nil {
		return nil
	}
	return &Session{
		Email:     c.Email,
		Name:      c.DisplayName,
		AvatarURL: c.AvatarURL,
	}
}

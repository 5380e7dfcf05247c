package jwt

import (
	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the payload issued by the identity service. Older tokens carry the
// user id as _id instead of id.
type Claims struct {
	ID         string `json:"id,omitempty"`
	InternalID string `json:"_id,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	gojwt.RegisteredClaims
}

// UserID returns id, falling back to _id.
func (c Claims) UserID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.InternalID
}

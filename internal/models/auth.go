package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of access tokens issued by the host platform.
type JWTClaims struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// Requester converts token claims into the identity passed to services.
func (c *JWTClaims) Requester() Requester {
	if c == nil {
		return Requester{}
	}
	return Requester{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

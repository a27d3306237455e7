package auth

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role the gallery issues tokens for.
const RoleAdmin = "admin"

// Claims is the JWT body handed to the admin client. The jti is the id of
// the server-side session record; the token alone grants nothing.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) SessionID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

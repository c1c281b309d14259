package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role gates access to the administrative tariff endpoints.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReader:
		return true
	}
	return false
}

// ParseRole normalises user input such as a CLI flag.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	return role, role.IsValid()
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Subject string
	Role    Role
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to operators.
type AccessTokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

package models

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role; the service has a single shared admin password.
const RoleAdmin = "admin"

// Claims defines the structure of the admin session token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

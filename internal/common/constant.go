// Package common contains shared constants and sentinel errors used across
// nutritracker components.
package common

// AuthorizationHeaderName carries the bearer access token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// Scopes stored on users and embedded into tokens.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

package models

// AuthenticatedUser is the identity the access guard attaches to the request
// context after verifying a bearer token and re-resolving the user row.
type AuthenticatedUser struct {
	UserID string
	Email  string
}

package services

import "errors"

// Typed failure conditions surfaced by the service layer. Handlers map these
// to HTTP status codes with errors.Is; anything else is an unexpected failure.
var (
	// ErrDuplicateEmail means the registration email is already taken,
	// whether detected by pre-check or by the unique index at insert time.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrAuthenticationFailed covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUserNotFound means the target user row does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrOrganisationNotFound means the organisation does not exist or is
	// not visible to the acting user.
	ErrOrganisationNotFound = errors.New("organisation not found")

	// ErrForbidden means the acting user may not view the target resource.
	ErrForbidden = errors.New("access denied")
)

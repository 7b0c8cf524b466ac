package auth

import "errors"

var (
	// ErrAuthentication covers both unknown tenant and wrong secret at login.
	// The two cases are deliberately indistinguishable to the caller so the
	// login endpoint cannot be used for account enumeration.
	ErrAuthentication = errors.New("invalid credentials")

	// ErrInvalidCredential covers an absent, malformed, expired, revoked, or
	// badly signed bearer token on a protected call.
	ErrInvalidCredential = errors.New("invalid bearer credential")
)

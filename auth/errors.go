package auth

import "errors"

// Authentication errors.
var (
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken indicates the token is malformed or does not match.
	ErrInvalidToken = errors.New("invalid token")
)

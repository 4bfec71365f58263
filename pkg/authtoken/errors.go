package authtoken

import "errors"

var (
	ErrMissingSecret  = errors.New("authtoken: missing signing secret")
	ErrSameSecret     = errors.New("authtoken: access and refresh secrets must differ")
	ErrMissingField   = errors.New("authtoken: required claim is missing")
	ErrInvalidRole    = errors.New("authtoken: unknown role")
	ErrMalformedToken = errors.New("authtoken: malformed token")
	ErrExpiredToken   = errors.New("authtoken: token is expired")
	ErrKeyMismatch    = errors.New("authtoken: signature does not match secret")
)

package domain

import "errors"

// Error kinds. Every error surfaced to a caller unwraps to one of these;
// anything else is treated as internal.
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrUnavailable  = errors.New("service unavailable")
)

// Error is a domain error with a caller-facing message and a kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrUserExists         = NewError(ErrConflict, "Email already registered")
	ErrAlreadyInWishlist  = NewError(ErrConflict, "Already added to wishlist")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid credentials")
	ErrInvalidID          = NewError(ErrBadRequest, "invalid id")
	ErrProcessorOpen      = NewError(ErrUnavailable, "payment processor unavailable")
	ErrIdempotencyKeyUsed = NewError(ErrConflict, "Idempotency-Key already used for a different amount or currency")
)

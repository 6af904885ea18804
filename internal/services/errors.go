package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrConflict          = errors.New("conflict")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Error is a client-facing failure of a given kind. errors.Is matches the kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrNotForSale    = &Error{Kind: ErrInvalidState, Message: "NFT is not for sale"}
	ErrAlreadyOwner  = &Error{Kind: ErrInvalidState, Message: "You own this NFT"}
	ErrSellerMissing = &Error{Kind: ErrInvalidState, Message: "Seller missing"}
)

// ConflictError reports a unique-field collision
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already in use.", e.Field)
}

// Is makes errors.Is(err, ErrConflict) hold
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

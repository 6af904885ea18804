package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrSaleConflict means the NFT was no longer listed by the expected seller at the expected price
	ErrSaleConflict = errors.New("sale conflict: listing changed")
	// ErrInsufficientBalance means the buyer debit matched no row
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUserMissing means a referenced user row does not exist
	ErrUserMissing = errors.New("user missing")
	// ErrNotOwner means a conditional update on the owner matched no row
	ErrNotOwner = errors.New("not owner")
	// ErrNonceMismatch means the login nonce was already used or replaced
	ErrNonceMismatch = errors.New("login nonce mismatch")
)

// DuplicateError reports a unique constraint violation on Field
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// asDuplicate converts a pq unique violation into a DuplicateError.
// Constraint names follow the Postgres default <table>_<column>_key.
func asDuplicate(err error, table string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return err
	}
	field := strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, table+"_"), "_key")
	if field == "" {
		field = "field"
	}
	return &DuplicateError{Field: field}
}

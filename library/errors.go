package library

import "errors"

// Sentinel errors returned by storage and lending operations. Wrap with
// fmt.Errorf("...: %w", err) and check with errors.Is.
var (
	// ErrNotFound is returned when a key lookup misses, or when a table's
	// backing file does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMalformedRecord is returned when a line cannot be decoded. A single
	// malformed line fails the entire load; there is no partial recovery.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrAlreadyExists is returned when registering a book or user whose key
	// is already taken.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrIneligibleBorrower is returned when the borrowing user is missing,
	// inactive, or over their loan cap.
	ErrIneligibleBorrower = errors.New("user is not eligible to borrow")

	// ErrBookUnavailable is returned when a borrow is attempted with no
	// copies available.
	ErrBookUnavailable = errors.New("book is not available")

	// ErrInvalidTransactionState is returned when a return or renewal is
	// attempted on a transaction whose status does not permit it.
	ErrInvalidTransactionState = errors.New("transaction is not in a valid state for this operation")
)

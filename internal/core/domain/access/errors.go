package access

import "errors"

var (
	// ErrValidation marks malformed administrative input. It is never
	// silently corrected; mutating operations return it to the caller.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup for an entry that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable marks a store I/O failure. The decision path
	// converts it into the safe default; administrative paths surface it.
	ErrStoreUnavailable = errors.New("store unavailable")
)

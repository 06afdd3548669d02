package pattern

import "errors"

// Rule compilation errors.
// Compile wraps these with the offending rule's name, so callers can use
// errors.Is while the message still points at the bad entry.
var (
	// ErrInvalidRule is returned when a rule's expression or metadata is malformed.
	ErrInvalidRule = errors.New("invalid pattern rule")

	// ErrEmptyLibrary is returned when Compile is given no rules.
	ErrEmptyLibrary = errors.New("pattern library has no rules")

	// ErrDuplicateRule is returned when two rules share a name.
	ErrDuplicateRule = errors.New("duplicate pattern rule name")
)

package aggregate

import "errors"

var (
	// ErrInvalidRecord is returned by Ingest for a record whose email does not validate.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvariantViolation is returned by Ingest for a record that breaks the
	// guarantees of the earlier stages, such as a score outside [0,1]. The record is dropped.
	ErrInvariantViolation = errors.New("aggregation invariant violated")
)

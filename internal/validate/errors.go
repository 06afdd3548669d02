package validate

import "errors"

// ErrUnknownValidator is returned by ByName for a name no validator is registered under.
var ErrUnknownValidator = errors.New("unknown validator")

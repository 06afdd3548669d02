package config

import (
	"errors"
	"fmt"

	"github.com/nao1215/contactscan/internal/model"
)

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidWindow is returned when the association window is not positive.
	ErrInvalidWindow = errors.New("invalid window: must be positive")

	// ErrInvalidCloseAttribution is returned when the close-attribution distance is negative.
	ErrInvalidCloseAttribution = errors.New("invalid close attribution distance: must be non-negative")

	// ErrInvalidWeight is returned when a method weight lies outside [0,1].
	ErrInvalidWeight = errors.New("invalid method weight: must be between 0 and 1")

	// ErrInvalidModifier is returned when a score bonus, penalty or cap lies outside [0,1].
	ErrInvalidModifier = errors.New("invalid score modifier: must be between 0 and 1")

	// ErrInvalidMinConfidence is returned when the confidence threshold lies outside [0,1].
	ErrInvalidMinConfidence = errors.New("invalid min confidence: must be between 0 and 1")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidQueueSize is returned when the queue size is not positive.
	ErrInvalidQueueSize = errors.New("invalid queue size: must be positive")

	// ErrInvalidValidationTimeout is returned when the validation timeout is negative.
	ErrInvalidValidationTimeout = errors.New("invalid validation timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidEnv is returned when a CONTACTSCAN_ variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")

	// ErrInvalidFile is returned when the configuration file holds a value that cannot be used.
	ErrInvalidFile = errors.New("invalid configuration file")
)

func fmtWeightError(m model.Method, w float64) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidWeight, m, w)
}

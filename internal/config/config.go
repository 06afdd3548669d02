package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "contactscan"

	// DefaultWindow is how far, in characters, an attribute may sit from an
	// email and still be attributed to it.
	DefaultWindow = 200

	// DefaultCloseAttribution is the distance at or under which a name or
	// title earns the close-attribution bonus.
	DefaultCloseAttribution = 50

	DefaultDomainMatchBonus      = 0.05
	DefaultCloseAttributionBonus = 0.05
	DefaultGenericRolePenalty    = 0.10
	DefaultCorroborationStep     = 0.05
	DefaultCorroborationCap      = 0.15
	DefaultValidBonus            = 0.10

	// DefaultQueueSize bounds the records waiting for the aggregator.
	// Workers block when it is full.
	DefaultQueueSize = 64

	// DefaultValidationTimeout bounds a single validator call.
	DefaultValidationTimeout = 5 * time.Second

	// DefaultValidator is the validator used when none is configured.
	DefaultValidator = "noop"
)

// Config holds every tunable of a run.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Window is the association window in characters.
	Window int

	// CloseAttribution is the distance threshold for the close-attribution bonus.
	CloseAttribution int

	// MethodWeights is the base score per detection method.
	MethodWeights map[model.Method]float64

	DomainMatchBonus      float64
	CloseAttributionBonus float64
	GenericRolePenalty    float64
	CorroborationStep     float64
	CorroborationCap      float64
	ValidBonus            float64

	// GenericRoles are local parts treated as role accounts (info@, support@).
	GenericRoles []string

	// MinConfidence drops contacts scoring below it from the final list.
	MinConfidence float64

	// Workers is the number of pages processed concurrently.
	Workers int

	// QueueSize is the capacity of the record queue in front of the aggregator.
	QueueSize int

	// Validator names the email validator: "noop" or "syntax".
	Validator string

	// ValidationTimeout bounds each validator call.
	ValidationTimeout time.Duration

	// HeadingNames takes a missing name from the closest heading above the address.
	HeadingNames bool

	// InferNames derives a name from first.last local parts when none is nearby.
	InferNames bool

	// InferCompany derives a company from the email domain when none is nearby.
	InferCompany bool

	// Strict panics on aggregation invariant violations instead of logging them.
	Strict bool

	// ExtraRules are appended to the built-in pattern rules.
	ExtraRules []pattern.Rule

	// Site is the crawled site. Pages without a SiteURL are matched against it.
	Site string

	// Verbose enables debug logging.
	Verbose bool

	// RevealPII disables masking of addresses and phone numbers in logs.
	RevealPII bool

	// JSONReport and MarkdownReport select the report format. Both false means text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is where the report is written. Empty means stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file location.
	ConfigFilePath string

	// EnvFile is a .env file consulted for CONTACTSCAN_ variables.
	EnvFile string

	// DBDir holds the run history database. Empty disables persistence.
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Window:                DefaultWindow,
		CloseAttribution:      DefaultCloseAttribution,
		MethodWeights:         DefaultMethodWeights(),
		DomainMatchBonus:      DefaultDomainMatchBonus,
		CloseAttributionBonus: DefaultCloseAttributionBonus,
		GenericRolePenalty:    DefaultGenericRolePenalty,
		CorroborationStep:     DefaultCorroborationStep,
		CorroborationCap:      DefaultCorroborationCap,
		ValidBonus:            DefaultValidBonus,
		GenericRoles:          append([]string(nil), pattern.DefaultGenericRoles...),
		Workers:               runtime.NumCPU(),
		QueueSize:             DefaultQueueSize,
		Validator:             DefaultValidator,
		ValidationTimeout:     DefaultValidationTimeout,
		EnvFile:               ".env",
		DBDir:                 XDGDataDir(),
		SaveToDB:              true,
	}
}

// DefaultMethodWeights returns a fresh copy of the built-in method weights.
func DefaultMethodWeights() map[model.Method]float64 {
	return map[model.Method]float64{
		model.MethodMailtoLink:         pattern.WeightMailtoLink,
		model.MethodStandardPattern:    pattern.WeightStandardPattern,
		model.MethodJavaScriptRendered: pattern.WeightJavaScriptRendered,
		model.MethodObfuscated:         pattern.WeightObfuscated,
		model.MethodOCR:                pattern.WeightOCR,
	}
}

// XDGDataDir returns the XDG data directory for contactscan.
// On Linux: ~/.local/share/contactscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for contactscan.
// On Linux: ~/.config/contactscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	if c.CloseAttribution < 0 {
		return ErrInvalidCloseAttribution
	}
	for m, w := range c.MethodWeights {
		if w < 0 || w > 1 {
			return fmtWeightError(m, w)
		}
	}
	for _, v := range []float64{
		c.DomainMatchBonus, c.CloseAttributionBonus, c.GenericRolePenalty,
		c.CorroborationStep, c.CorroborationCap, c.ValidBonus,
	} {
		if v < 0 || v > 1 {
			return ErrInvalidModifier
		}
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidMinConfidence
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.QueueSize <= 0 {
		return ErrInvalidQueueSize
	}
	if c.ValidationTimeout < 0 {
		return ErrInvalidValidationTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

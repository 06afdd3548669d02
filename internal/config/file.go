package config

import (
	"fmt"
	"time"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// File is the structure of the .contactscan configuration file.
// Unset fields leave the corresponding Config value alone.
type File struct {
	Window           *int `yaml:"window,omitempty"`
	CloseAttribution *int `yaml:"closeAttribution,omitempty"`

	// MethodWeights maps method names (mailto_link, standard_pattern, ...) to base scores.
	MethodWeights map[string]float64 `yaml:"methodWeights,omitempty"`

	DomainMatchBonus      *float64 `yaml:"domainMatchBonus,omitempty"`
	CloseAttributionBonus *float64 `yaml:"closeAttributionBonus,omitempty"`
	GenericRolePenalty    *float64 `yaml:"genericRolePenalty,omitempty"`
	CorroborationStep     *float64 `yaml:"corroborationStep,omitempty"`
	CorroborationCap      *float64 `yaml:"corroborationCap,omitempty"`
	ValidBonus            *float64 `yaml:"validBonus,omitempty"`

	GenericRoles []string `yaml:"genericRoles,omitempty"`

	MinConfidence *float64 `yaml:"minConfidence,omitempty"`
	Workers       *int     `yaml:"workers,omitempty"`
	QueueSize     *int     `yaml:"queueSize,omitempty"`

	Validator         string `yaml:"validator,omitempty"`
	ValidationTimeout string `yaml:"validationTimeout,omitempty"`

	HeadingNames *bool `yaml:"headingNames,omitempty"`
	InferNames   *bool `yaml:"inferNames,omitempty"`
	InferCompany *bool `yaml:"inferCompany,omitempty"`
	Strict       *bool `yaml:"strict,omitempty"`

	Site  string `yaml:"site,omitempty"`
	DBDir string `yaml:"dbDir,omitempty"`

	// Rules are extra detection rules appended after the built-in ones.
	Rules []RuleFile `yaml:"rules,omitempty"`
}

// RuleFile is a detection rule as written in the configuration file.
type RuleFile struct {
	Name string `yaml:"name"`

	// Kind is one of email, phone, social, name, title, company.
	Kind string `yaml:"kind"`

	// Expr is an RE2 expression.
	Expr string `yaml:"expr"`

	// Group selects the submatch holding the value. 0 means the whole match.
	Group int `yaml:"group,omitempty"`

	// Platform is required for social rules.
	Platform string `yaml:"platform,omitempty"`
}

// Rule converts the entry to a pattern rule. Email rules are scored as
// standard-pattern hits.
func (r RuleFile) Rule() (pattern.Rule, error) {
	kind, ok := model.ParseKind(r.Kind)
	if !ok {
		return pattern.Rule{}, fmt.Errorf("%w: rule %q: unknown kind %q", ErrInvalidFile, r.Name, r.Kind)
	}

	rule := pattern.Rule{
		Name:     r.Name,
		Kind:     kind,
		Method:   model.MethodStandardPattern,
		Expr:     r.Expr,
		Group:    r.Group,
		Platform: r.Platform,
	}
	switch kind {
	case model.KindEmail:
		rule.Decoder = pattern.DecodeEmail
		rule.Scope = pattern.ScopeOutsideRewrites
		rule.Weight = pattern.WeightStandardPattern
	case model.KindPhone:
		rule.Decoder = pattern.DecodePhone
	case model.KindSocial:
		rule.Decoder = pattern.DecodeSocial
	case model.KindName:
		rule.Decoder = pattern.DecodeName
	case model.KindTitle, model.KindCompany:
		rule.Decoder = pattern.DecodeText
	}
	return rule, nil
}

// Apply overlays the values set in the file onto cfg.
func (f *File) Apply(cfg *Config) error {
	setInt(&cfg.Window, f.Window)
	setInt(&cfg.CloseAttribution, f.CloseAttribution)
	setInt(&cfg.Workers, f.Workers)
	setInt(&cfg.QueueSize, f.QueueSize)

	setFloat(&cfg.DomainMatchBonus, f.DomainMatchBonus)
	setFloat(&cfg.CloseAttributionBonus, f.CloseAttributionBonus)
	setFloat(&cfg.GenericRolePenalty, f.GenericRolePenalty)
	setFloat(&cfg.CorroborationStep, f.CorroborationStep)
	setFloat(&cfg.CorroborationCap, f.CorroborationCap)
	setFloat(&cfg.ValidBonus, f.ValidBonus)
	setFloat(&cfg.MinConfidence, f.MinConfidence)

	setBool(&cfg.HeadingNames, f.HeadingNames)
	setBool(&cfg.InferNames, f.InferNames)
	setBool(&cfg.InferCompany, f.InferCompany)
	setBool(&cfg.Strict, f.Strict)

	if len(f.MethodWeights) > 0 {
		weights := make(map[model.Method]float64, len(cfg.MethodWeights))
		for m, w := range cfg.MethodWeights {
			weights[m] = w
		}
		for name, w := range f.MethodWeights {
			m, ok := model.ParseMethod(name)
			if !ok {
				return fmt.Errorf("%w: unknown method %q in methodWeights", ErrInvalidFile, name)
			}
			weights[m] = w
		}
		cfg.MethodWeights = weights
	}
	if len(f.GenericRoles) > 0 {
		cfg.GenericRoles = append([]string(nil), f.GenericRoles...)
	}
	if f.Validator != "" {
		cfg.Validator = f.Validator
	}
	if f.ValidationTimeout != "" {
		d, err := time.ParseDuration(f.ValidationTimeout)
		if err != nil {
			return fmt.Errorf("%w: validationTimeout: %w", ErrInvalidFile, err)
		}
		cfg.ValidationTimeout = d
	}
	if f.Site != "" {
		cfg.Site = f.Site
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
	for _, rf := range f.Rules {
		rule, err := rf.Rule()
		if err != nil {
			return err
		}
		cfg.ExtraRules = append(cfg.ExtraRules, rule)
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

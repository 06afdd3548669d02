package pattern

import (
	"fmt"
	"regexp"

	"github.com/nao1215/contactscan/internal/model"
)

// Scope restricts where in the normalized text a rule may match.
type Scope int

const (
	// ScopeAny accepts matches anywhere.
	ScopeAny Scope = iota
	// ScopeOutsideRewrites rejects matches that overlap a de-obfuscated address.
	ScopeOutsideRewrites
	// ScopeInsideRewrites accepts only matches that overlap a de-obfuscated address.
	ScopeInsideRewrites
)

// Decoder names the transformation that turns a raw match into a candidate value.
type Decoder int

const (
	// DecodeEmail lower-cases and validates an address.
	DecodeEmail Decoder = iota
	// DecodeBase64Email decodes a base64 token and accepts it only if it is exactly one address.
	DecodeBase64Email
	// DecodePhone strips formatting down to digits and an optional leading '+'.
	DecodePhone
	// DecodeSocial canonicalizes a profile URL and rejects non-profile paths.
	DecodeSocial
	// DecodeName trims surrounding non-name words and validates what is left.
	DecodeName
	// DecodeText trims punctuation and collapses spaces.
	DecodeText
)

// String returns the decoder name.
func (d Decoder) String() string {
	switch d {
	case DecodeEmail:
		return "email"
	case DecodeBase64Email:
		return "base64_email"
	case DecodePhone:
		return "phone"
	case DecodeSocial:
		return "social"
	case DecodeName:
		return "name"
	case DecodeText:
		return "text"
	default:
		return "unknown"
	}
}

// Rule is one declarative entry in the pattern library.
type Rule struct {
	// Name identifies the rule in logs and errors. Must be unique.
	Name string

	// Kind is the kind of candidate the rule emits.
	Kind model.Kind

	// Method is the detection method recorded on emitted candidates.
	Method model.Method

	// Expr is an RE2 regular expression.
	Expr string

	// Group selects the submatch holding the value. 0 means the whole match.
	Group int

	// Scope restricts where matches are accepted.
	Scope Scope

	// Decoder turns the raw match into a normalized value.
	Decoder Decoder

	// Platform names the social network for KindSocial rules.
	Platform string

	// Weight is the base confidence of candidates the rule emits.
	// Rules for non-email kinds use 0.
	Weight float64
}

// Match is a decoded hit produced by a compiled rule.
type Match struct {
	// Value is the decoded, validated value.
	Value string

	// Span is the byte range of the value in the searched text.
	Span model.Span
}

// CompiledRule is a Rule with its expression compiled.
// It is immutable and safe for concurrent use.
type CompiledRule struct {
	Rule

	re *regexp.Regexp
}

// FindAll returns every decoded match of the rule in text, in order.
// Matches that fail decoding or validation are dropped.
func (r *CompiledRule) FindAll(text string) []Match {
	locs := r.re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[2*r.Group], loc[2*r.Group+1]
		if start < 0 || end < start {
			continue
		}
		value, from, to, ok := decode(r.Decoder, text[start:end])
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Value: value,
			Span:  model.Span{Start: start + from, End: start + to},
		})
	}
	return matches
}

// Library is an ordered, compiled rule set. Order is priority: earlier rules win overlaps.
type Library struct {
	rules []*CompiledRule
}

// Compile validates and compiles rules into a Library.
// Any malformed rule rejects the whole set, so a partially compiled library never exists.
func Compile(rules []Rule) (*Library, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyLibrary
	}

	seen := make(map[string]bool, len(rules))
	compiled := make([]*CompiledRule, 0, len(rules))
	for i, rule := range rules {
		if err := checkRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, rule.Name, err)
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("rule %d (%q): %w", i, rule.Name, ErrDuplicateRule)
		}
		seen[rule.Name] = true

		re, err := regexp.Compile(rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w: %w", i, rule.Name, ErrInvalidRule, err)
		}
		if rule.Group > re.NumSubexp() {
			return nil, fmt.Errorf("rule %d (%q): %w: group %d out of range (%d groups)",
				i, rule.Name, ErrInvalidRule, rule.Group, re.NumSubexp())
		}
		compiled = append(compiled, &CompiledRule{Rule: rule, re: re})
	}

	return &Library{rules: compiled}, nil
}

// Default compiles DefaultRules.
func Default() (*Library, error) {
	return Compile(DefaultRules())
}

// Rules returns the compiled rules in priority order.
func (l *Library) Rules() []*CompiledRule {
	return l.rules
}

// Len returns the number of rules.
func (l *Library) Len() int {
	return len(l.rules)
}

// Weight returns the base weight of the first email rule using method m, or 0 if none does.
func (l *Library) Weight(m model.Method) float64 {
	for _, r := range l.rules {
		if r.Kind == model.KindEmail && r.Method == m {
			return r.Weight
		}
	}
	return 0
}

// checkRule validates rule metadata before compilation.
func checkRule(r Rule) error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRule)
	}
	if r.Expr == "" {
		return fmt.Errorf("%w: empty expression", ErrInvalidRule)
	}
	if r.Group < 0 {
		return fmt.Errorf("%w: negative group", ErrInvalidRule)
	}
	if r.Weight < 0 || r.Weight > 1 {
		return fmt.Errorf("%w: weight %v outside [0,1]", ErrInvalidRule, r.Weight)
	}
	if r.Kind.String() == "unknown" {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRule, r.Kind)
	}
	if r.Method.String() == "unknown" {
		return fmt.Errorf("%w: unknown method %d", ErrInvalidRule, r.Method)
	}
	if r.Scope < ScopeAny || r.Scope > ScopeInsideRewrites {
		return fmt.Errorf("%w: unknown scope %d", ErrInvalidRule, r.Scope)
	}

	var want []model.Kind
	switch r.Decoder {
	case DecodeEmail, DecodeBase64Email:
		want = []model.Kind{model.KindEmail}
	case DecodePhone:
		want = []model.Kind{model.KindPhone}
	case DecodeSocial:
		want = []model.Kind{model.KindSocial}
	case DecodeName:
		want = []model.Kind{model.KindName}
	case DecodeText:
		want = []model.Kind{model.KindTitle, model.KindCompany}
	default:
		return fmt.Errorf("%w: unknown decoder %d", ErrInvalidRule, r.Decoder)
	}
	ok := false
	for _, k := range want {
		if r.Kind == k {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("%w: decoder %s cannot emit %s", ErrInvalidRule, r.Decoder, r.Kind)
	}

	if r.Kind == model.KindSocial && r.Platform == "" {
		return fmt.Errorf("%w: social rule without platform", ErrInvalidRule)
	}
	return nil
}

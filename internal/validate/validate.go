package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcnijman/go-emailaddress"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// Validator checks an address with some external authority.
//
// Implementations return VerdictUnknown when they cannot decide. An error is
// treated the same as VerdictUnknown by the engine.
type Validator interface {
	Validate(ctx context.Context, email string) (model.Verdict, error)
}

// Func adapts a function to the Validator interface.
type Func func(ctx context.Context, email string) (model.Verdict, error)

// Validate calls f.
func (f Func) Validate(ctx context.Context, email string) (model.Verdict, error) {
	return f(ctx, email)
}

// Noop never decides. It is the default validator.
type Noop struct{}

// Validate returns VerdictUnknown.
func (Noop) Validate(context.Context, string) (model.Verdict, error) {
	return model.VerdictUnknown, nil
}

// reservedTLDs never route mail (RFC 2606 and RFC 6761).
var reservedTLDs = map[string]bool{
	"test":      true,
	"example":   true,
	"invalid":   true,
	"localhost": true,
	"local":     true,
}

// Syntax rejects addresses that can never be delivered: ones that do not parse
// as an address, or whose domain ends in a reserved or unassigned top-level
// domain. It cannot prove deliverability, so it never returns VerdictValid.
type Syntax struct{}

// Validate checks email offline.
func (Syntax) Validate(_ context.Context, email string) (model.Verdict, error) {
	email = model.NormalizeEmail(email)
	if _, err := emailaddress.Parse(email); err != nil {
		return model.VerdictInvalid, nil
	}

	domain := pattern.Domain(email)
	labels := strings.Split(domain, ".")
	if reservedTLDs[labels[len(labels)-1]] {
		return model.VerdictInvalid, nil
	}

	// Unlisted TLDs fall through to the "*" rule, which is not ICANN-managed.
	suffix, icann := publicsuffix.PublicSuffix(domain)
	if !icann && !strings.Contains(suffix, ".") {
		return model.VerdictInvalid, nil
	}
	return model.VerdictUnknown, nil
}

// Names lists the validators ByName knows.
var Names = []string{"noop", "syntax"}

// ByName returns the built-in validator registered under name.
func ByName(name string) (Validator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "noop", "none":
		return Noop{}, nil
	case "syntax":
		return Syntax{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownValidator, name, strings.Join(Names, ", "))
	}
}

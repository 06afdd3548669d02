package score

import (
	"math"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// Params holds the scoring weights and modifiers.
type Params struct {
	// Weights is the base score per detection method.
	Weights map[model.Method]float64

	// DomainMatchBonus is added when the address belongs to the crawled site.
	DomainMatchBonus float64

	// CloseAttributionBonus is added when a name or title sits within CloseAttribution characters.
	CloseAttributionBonus float64
	CloseAttribution      int

	// GenericRolePenalty is subtracted for role accounts listed in GenericRoles.
	GenericRolePenalty float64
	GenericRoles       []string

	// ValidBonus is added for a Valid verdict.
	ValidBonus float64

	// CorroborationStep is added per extra page the address was seen on, up to CorroborationCap.
	CorroborationStep float64
	CorroborationCap  float64
}

// DefaultParams returns the default scoring parameters.
func DefaultParams() Params {
	return Params{
		Weights: map[model.Method]float64{
			model.MethodMailtoLink:         pattern.WeightMailtoLink,
			model.MethodStandardPattern:    pattern.WeightStandardPattern,
			model.MethodJavaScriptRendered: pattern.WeightJavaScriptRendered,
			model.MethodObfuscated:         pattern.WeightObfuscated,
			model.MethodOCR:                pattern.WeightOCR,
		},
		DomainMatchBonus:      0.05,
		CloseAttributionBonus: 0.05,
		CloseAttribution:      50,
		GenericRolePenalty:    0.10,
		GenericRoles:          append([]string(nil), pattern.DefaultGenericRoles...),
		ValidBonus:            0.10,
		CorroborationStep:     0.05,
		CorroborationCap:      0.15,
	}
}

// Scorer computes confidence scores. It is immutable and safe for concurrent use.
type Scorer struct {
	p Params
}

// New creates a Scorer. Missing method weights score as 0.
func New(p Params) *Scorer {
	weights := make(map[model.Method]float64, len(p.Weights))
	for m, w := range p.Weights {
		weights[m] = w
	}
	p.Weights = weights
	p.GenericRoles = append([]string(nil), p.GenericRoles...)
	return &Scorer{p: p}
}

// Score returns the per-record confidence in [0,1], rounded to 4 decimals.
// Cross-page corroboration is not included; see Corroborate.
func (s *Scorer) Score(rec model.AssociatedRecord) float64 {
	if rec.Verdict == model.VerdictInvalid {
		return 0
	}

	v := s.p.Weights[rec.Method]
	if SameSite(rec.Email, rec.Site()) {
		v += s.p.DomainMatchBonus
	}
	if s.isClose(rec.Name) || s.isClose(rec.Title) {
		v += s.p.CloseAttributionBonus
	}
	if pattern.IsGenericRole(rec.Email, s.p.GenericRoles) {
		v -= s.p.GenericRolePenalty
	}
	if rec.Verdict == model.VerdictValid {
		v += s.p.ValidBonus
	}
	return round(v)
}

// Corroborate adds the bonus for an address seen on the given number of distinct pages to best.
func (s *Scorer) Corroborate(best float64, pages int, verdict model.Verdict) float64 {
	if verdict == model.VerdictInvalid {
		return 0
	}
	extra := float64(max(pages-1, 0))
	return round(best + math.Min(s.p.CorroborationStep*extra, s.p.CorroborationCap))
}

// isClose reports whether a was found by proximity within the close distance.
func (s *Scorer) isClose(a model.Attribute) bool {
	return !a.IsZero() && !a.Inferred && a.Distance <= s.p.CloseAttribution
}

// SameSite reports whether email belongs to the registrable domain of siteURL.
func SameSite(email, siteURL string) bool {
	domain := strings.ToLower(pattern.Domain(email))
	host := model.HostOf(siteURL)
	if domain == "" || host == "" {
		return false
	}
	return registrable(domain) == registrable(host)
}

func registrable(host string) string {
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

func round(v float64) float64 {
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*1e4) / 1e4
}

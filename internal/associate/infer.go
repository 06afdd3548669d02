package associate

import (
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// freeMailLabels are registrable-domain labels of mailbox providers, which say
// nothing about the owner's employer.
var freeMailLabels = map[string]bool{
	"gmail": true, "googlemail": true, "yahoo": true, "ymail": true, "hotmail": true,
	"outlook": true, "live": true, "msn": true, "aol": true, "icloud": true, "me": true,
	"mac": true, "protonmail": true, "proton": true, "gmx": true, "yandex": true,
	"mail": true, "zoho": true, "fastmail": true, "tutanota": true, "qq": true,
	"163": true, "naver": true,
}

// infer fills empty name and company fields from the address when enabled.
// Inferred values sit just outside the window so any nearby value beats them.
func (a *Associator) infer(rec *model.AssociatedRecord, cands []model.Candidate) {
	if a.inferNames && rec.Name.IsZero() {
		if name, ok := inferName(rec.Email, cands); ok {
			rec.Name = model.Attribute{Value: name, Distance: a.window + 1, Inferred: true}
		}
	}
	if a.inferCompany && rec.Company.IsZero() {
		if company, ok := inferCompany(rec.Email); ok {
			rec.Company = model.Attribute{Value: company, Distance: a.window + 1, Inferred: true}
		}
	}
}

// inferName reads a person name from local parts like jane.doe or jane_doe.
// When the page shows a name that spells the same words with accents, that
// spelling is used instead.
func inferName(email string, cands []model.Candidate) (string, bool) {
	local, _, _ := strings.Cut(pattern.LocalPart(email), "+")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	for _, p := range parts {
		if len(p) < 2 || strings.IndexFunc(p, func(r rune) bool { return r < 'a' || r > 'z' }) >= 0 {
			return "", false
		}
	}

	words := strings.Join(parts, " ")
	for _, c := range cands {
		if c.Kind == model.KindName && strings.ToLower(stripDiacritics(c.Value)) == words {
			return c.Value, true
		}
	}

	name := cases.Title(language.Und).String(words)
	if !pattern.ValidName(name) {
		return "", false
	}
	return name, true
}

// inferCompany turns the registrable domain label into a company name:
// acme-widgets.co.uk becomes "Acme Widgets".
func inferCompany(email string) (string, bool) {
	site, err := publicsuffix.EffectiveTLDPlusOne(pattern.Domain(email))
	if err != nil {
		return "", false
	}
	label, _, _ := strings.Cut(site, ".")
	if len(label) < 2 || freeMailLabels[label] {
		return "", false
	}
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	if len(words) == 0 {
		return "", false
	}
	return cases.Title(language.Und).String(strings.Join(words, " ")), true
}

// stripDiacritics removes combining marks: "José" becomes "Jose".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

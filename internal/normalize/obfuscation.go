package normalize

import (
	"regexp"
	"strings"

	"github.com/nao1215/contactscan/internal/model"
)

// The markers run on collapsed text, so a single optional space is enough.
const (
	atMarker = `(?: ?[\[\(\{<] ?(?i:at|@) ?[\]\)\}>] ?` +
		`| (?i:at) ` +
		`| ?[\x{FF20}\x{FE6B}] ?` +
		`| @ ?| ?@ ` +
		`|@)`

	dotMarker = ` ?[\[\(\{<] ?(?i:dot|\.) ?[\]\)\}>] ?` +
		`| (?i:dot) ` +
		`| ?[\x{FF0E}\x{FE52}] ?` +
		`| \. `
)

var (
	disguisedEmail = regexp.MustCompile(
		`([A-Za-z0-9._%+\-]+)(` + atMarker + `)` +
			`([A-Za-z0-9\-]+(?:(?:` + dotMarker + `|\.)[A-Za-z0-9\-]+)*(?:` + dotMarker + `|\.)[A-Za-z]{2,})\b`)

	dotMarkerRe   = regexp.MustCompile(dotMarker)
	plainDomainRe = regexp.MustCompile(`^[A-Za-z0-9.\-]+$`)
)

// deobfuscate rewrites disguised addresses such as "john [at] example [dot] com"
// to john@example.com. It returns the rewritten text and the byte spans of the
// rebuilt addresses in it.
//
// A bare " at " only counts when the domain is disguised too, so prose like
// "visit us at example.com" is left alone.
func deobfuscate(text string) (string, []model.Span) {
	locs := disguisedEmail.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	var (
		b        strings.Builder
		rewrites []model.Span
		last     int
	)
	for _, loc := range locs {
		local := text[loc[2]:loc[3]]
		at := text[loc[4]:loc[5]]
		domain := text[loc[6]:loc[7]]
		if !disguised(at, domain) {
			continue
		}

		if b.Cap() == 0 {
			b.Grow(len(text))
		}
		b.WriteString(text[last:loc[0]])
		start := b.Len()
		b.WriteString(local)
		b.WriteByte('@')
		b.WriteString(dotMarkerRe.ReplaceAllLiteralString(domain, "."))
		rewrites = append(rewrites, model.Span{Start: start, End: b.Len()})
		last = loc[1]
	}
	if rewrites == nil {
		return text, nil
	}
	b.WriteString(text[last:])
	return b.String(), rewrites
}

// disguised reports whether an address split into at-marker and domain uses at
// least one disguise.
func disguised(at, domain string) bool {
	domainDisguised := !plainDomainRe.MatchString(domain)
	if strings.EqualFold(strings.TrimSpace(at), "at") {
		return domainDisguised
	}
	return at != "@" || domainDisguised
}

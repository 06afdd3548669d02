package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/nao1215/contactscan/internal/model"
)

// obfuscationMarkers survive folding so the de-obfuscation pass can see them.
var obfuscationMarkers = map[rune]bool{
	'\uFF20': true, // fullwidth commercial at
	'\uFF0E': true, // fullwidth full stop
	'\uFE6B': true, // small commercial at
	'\uFE52': true, // small full stop
}

// confusables maps look-alike runes to ASCII. A zero value drops the rune.
var confusables = map[rune]rune{
	'\u2024': '.', // one dot leader
	'\u2010': '-',
	'\u2011': '-',
	'\u2012': '-',
	'\u2013': '-',
	'\u2212': '-',
	'\u00AD': 0, // soft hyphen
	'\u200B': 0,
	'\u200C': 0,
	'\u200D': 0,
	'\u2060': 0,
	'\uFEFF': 0,
}

// fold maps full-width and half-width forms to their canonical width and
// replaces confusable runes. Invalid UTF-8 bytes are copied through.
func fold(s string) string {
	if isASCII(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		i += size

		if obfuscationMarkers[r] {
			b.WriteRune(r)
			continue
		}
		if c, ok := confusables[r]; ok {
			if c != 0 {
				b.WriteRune(c)
			}
			continue
		}
		if f := width.LookupRune(r).Folded(); f != 0 {
			r = f
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseSpace turns block breaks into single newlines, runs of
// model.LineBreak into one LineBreak and every other run of whitespace into a
// single space. The strongest separator in a run wins, and separators at
// either end are dropped.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace, pendingLine, pendingBreak := false, false, false
	flush := func() {
		if b.Len() > 0 {
			switch {
			case pendingBreak:
				b.WriteByte('\n')
			case pendingLine:
				b.WriteRune(model.LineBreak)
			case pendingSpace:
				b.WriteByte(' ')
			}
		}
		pendingSpace, pendingLine, pendingBreak = false, false, false
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			flush()
			b.WriteByte(s[i])
			i++
			continue
		}
		i += size

		switch {
		case r == '\n' || r == '\r' || r == '\u2029':
			pendingBreak = true
		case r == model.LineBreak:
			pendingLine = true
		case unicode.IsSpace(r):
			pendingSpace = true
		default:
			flush()
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

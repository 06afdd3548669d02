package pattern

import (
	"encoding/base64"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// decode applies decoder d to raw. It returns the decoded value and the byte
// range [from, to) of raw the value was taken from.
func decode(d Decoder, raw string) (value string, from, to int, ok bool) {
	switch d {
	case DecodeEmail:
		v, ok := decodeEmail(raw)
		return v, 0, len(raw), ok
	case DecodeBase64Email:
		v, ok := decodeBase64Email(raw)
		return v, 0, len(raw), ok
	case DecodePhone:
		v, ok := NormalizePhone(raw)
		return v, 0, len(raw), ok
	case DecodeSocial:
		v, ok := CanonicalSocialURL(raw)
		return v, 0, len(raw), ok
	case DecodeName:
		return decodeName(raw)
	case DecodeText:
		return decodeText(raw)
	default:
		return "", 0, 0, false
	}
}

func decodeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !ValidEmail(email) {
		return "", false
	}
	return email, true
}

// decodeBase64Email accepts a token only if it decodes to a single valid address.
func decodeBase64Email(raw string) (string, bool) {
	if len(raw) < 12 || len(raw)%4 != 0 {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	email := strings.ToLower(strings.TrimSpace(string(decoded)))
	if strings.ContainsAny(email, " \t\r\n") || !ValidEmail(email) {
		return "", false
	}
	return email, true
}

// ValidEmail reports whether s is a syntactically acceptable address:
// a single '@', a 1-64 character local part, a dotted domain and an alphabetic TLD.
func ValidEmail(s string) bool {
	if len(s) < 6 || len(s) > 254 {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || len(local) > 64 || domain == "" {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	if !strings.Contains(domain, ".") || strings.Contains(domain, "..") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") ||
		strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return false
	}

	labels := strings.Split(domain, ".")
	for _, label := range labels {
		if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	// File names such as logo@2x.png match the address shape.
	if imageSuffixes[tld] {
		return false
	}
	return true
}

// imageSuffixes are file extensions that show up as fake TLDs in asset names.
var imageSuffixes = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "svg": true, "webp": true,
	"css": true, "js": true, "ico": true, "bmp": true,
}

// LocalPart returns the part of an address before the '@'.
func LocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Domain returns the part of an address after the '@'.
func Domain(email string) string {
	_, domain, _ := strings.Cut(email, "@")
	return domain
}

// NormalizePhone keeps a leading '+' and the digits of raw.
// It reports false when the result has fewer than 7 or more than 15 digits.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	phone := b.String()
	digitsOnly := strings.TrimPrefix(phone, "+")
	if strings.Count(digitsOnly, digitsOnly[:1]) == len(digitsOnly) {
		// every digit identical, e.g. 0000000
		return "", false
	}
	return phone, true
}

// ValidPhone reports whether raw normalizes to an acceptable phone number.
func ValidPhone(raw string) bool {
	_, ok := NormalizePhone(raw)
	return ok
}

// reservedProfilePaths are first path segments that never name a profile.
var reservedProfilePaths = map[string]bool{
	"share": true, "sharer": true, "sharer.php": true, "intent": true, "login": true,
	"signup": true, "home": true, "search": true, "hashtag": true, "explore": true,
	"settings": true, "privacy": true, "about": true, "help": true, "policies": true,
	"tos": true, "dialog": true, "plugins": true, "i": true, "watch": true,
	"legal": true, "terms": true, "features": true, "pricing": true, "login.php": true,
}

// CanonicalSocialURL normalizes a social profile URL to https://host/path with the
// host lower-cased, "www."/"m."/"mobile." removed, and query, fragment and
// trailing slash dropped. It rejects links that do not point at a profile.
func CanonicalSocialURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimRight(raw, ".,;:!?)")
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "mobile.", "m."} {
		host = strings.TrimPrefix(host, prefix)
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false
	}
	first, _, _ := strings.Cut(path, "/")
	if reservedProfilePaths[strings.ToLower(first)] {
		return "", false
	}

	return "https://" + host + "/" + path, true
}

// decodeName trims leading and trailing words that are not part of a name and
// validates what is left.
func decodeName(raw string) (string, int, int, bool) {
	from, to := 0, len(raw)
	for {
		word, _, found := strings.Cut(raw[from:to], " ")
		if !found || !isNameStopword(word) {
			break
		}
		from += len(word) + 1
	}
	for {
		i := strings.LastIndexByte(raw[from:to], ' ')
		if i < 0 || !isNameStopword(raw[from+i+1:to]) {
			break
		}
		to = from + i
	}

	value := raw[from:to]
	if !ValidName(value) {
		return "", 0, 0, false
	}
	return value, from, to, true
}

// ValidName reports whether s looks like a person name: two to four words made of
// letters, apostrophes, hyphens or a trailing period, none of them a stop word.
func ValidName(s string) bool {
	if len(s) < 4 || len(s) > 60 {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	letters := 0
	for _, w := range words {
		if isNameStopword(w) {
			return false
		}
		for _, r := range w {
			switch {
			case unicode.IsLetter(r):
				letters++
			case r == '\'' || r == '-' || r == '.':
			default:
				return false
			}
		}
	}
	if float64(letters)/float64(utf8.RuneCountInString(strings.ReplaceAll(s, " ", ""))) < 0.8 {
		return false
	}
	return strings.ToUpper(s) != s
}

// decodeText trims surrounding punctuation and spaces from a title or company match.
func decodeText(raw string) (string, int, int, bool) {
	const cutset = " ,;:-|/"
	trimmedLeft := strings.TrimLeft(raw, cutset)
	from := len(raw) - len(trimmedLeft)
	value := strings.TrimRight(trimmedLeft, cutset)
	to := from + len(value)
	if utf8.RuneCountInString(value) < 2 || len(value) > 80 {
		return "", 0, 0, false
	}
	return value, from, to, true
}

// IsGenericRole reports whether the local part of email is one of roles, case-insensitively.
func IsGenericRole(email string, roles []string) bool {
	local := strings.ToLower(LocalPart(email))
	for _, role := range roles {
		if local == strings.ToLower(role) {
			return true
		}
	}
	return false
}

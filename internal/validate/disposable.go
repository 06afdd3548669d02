package validate

import (
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/contactscan/internal/pattern"
)

// disposableDomains are throwaway-mail services.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"guerrillamail.net": true,
	"sharklasers.com":   true,
	"10minutemail.com":  true,
	"tempmail.com":      true,
	"temp-mail.org":     true,
	"yopmail.com":       true,
	"trashmail.com":     true,
	"trash-mail.com":    true,
	"getnada.com":       true,
	"dispostable.com":   true,
	"throwawaymail.com": true,
	"maildrop.cc":       true,
	"fakeinbox.com":     true,
	"mintemail.com":     true,
	"mohmal.com":        true,
	"emailondeck.com":   true,
	"spamgourmet.com":   true,
	"mailnesia.com":     true,
	"discard.email":     true,
	"tempr.email":       true,
	"mytemp.email":      true,
	"burnermail.io":     true,
	"33mail.com":        true,
	"anonaddy.me":       true,
	"spambox.us":        true,
	"mailcatch.com":     true,
	"inboxkitten.com":   true,
	"emailfake.com":     true,
}

// IsDisposable reports whether email is hosted by a throwaway-mail service.
// Subdomains of a listed service count too.
func IsDisposable(email string) bool {
	domain := strings.ToLower(pattern.Domain(email))
	if domain == "" {
		return false
	}
	if disposableDomains[domain] {
		return true
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(domain)
	return err == nil && disposableDomains[site]
}

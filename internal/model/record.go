package model

import (
	"sort"
	"strings"
)

// Attribute is a single attributed value with its distance in characters
// from the email it was attributed to.
type Attribute struct {
	Value    string `json:"value"`
	Distance int    `json:"distance"`

	// Inferred marks values derived from the address itself rather than from nearby text.
	Inferred bool `json:"inferred,omitempty"`
}

// IsZero reports whether no value was attributed.
func (a Attribute) IsZero() bool {
	return a.Value == ""
}

// Closer reports whether a should replace b under the closest-wins rule.
// Equal distances fall back to the lexicographically smaller value so that
// the choice does not depend on the order values are seen in.
func (a Attribute) Closer(b Attribute) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Value < b.Value
}

// SocialAttribute is an attributed social-profile URL.
type SocialAttribute struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Distance int    `json:"distance"`
}

// AssociatedRecord is an email candidate enriched with nearby attributes from the same page.
type AssociatedRecord struct {
	// Email is the address as detected.
	Email string `json:"email"`

	// Method is how the address was found.
	Method Method `json:"method"`

	// Span is where the address sits in the page's normalized text.
	Span Span `json:"span"`

	// SourceURL is the page the record came from.
	SourceURL string `json:"source_url"`

	// PageIndex is the position of the page in the run's input. With Span it
	// fixes where an address was first seen, whatever order pages finish in.
	PageIndex int `json:"page_index"`

	// SiteURL is the crawled site used for domain matching.
	// Empty means SourceURL.
	SiteURL string `json:"site_url,omitempty"`

	Name    Attribute `json:"name"`
	Title   Attribute `json:"title"`
	Company Attribute `json:"company"`

	// Phones holds every phone number in range, one entry per number.
	Phones []Attribute `json:"phones,omitempty"`

	// Socials holds every social URL in range, one entry per URL.
	Socials []SocialAttribute `json:"socials,omitempty"`

	// Verdict is the validator outcome for Email.
	Verdict Verdict `json:"verdict"`

	// Score is the per-record confidence. Corroboration is not included.
	Score float64 `json:"score"`

	// OCRConfidence is passed through from OCR pages, 0 otherwise.
	OCRConfidence float64 `json:"ocr_confidence,omitempty"`
}

// Site returns the URL the record's domain should be matched against.
func (r AssociatedRecord) Site() string {
	if r.SiteURL != "" {
		return r.SiteURL
	}
	return r.SourceURL
}

// NormalizeEmail returns the key used to identify an address within a run.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Contact is the deduplicated, run-level entity for one email address.
type Contact struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`

	// Phones is sorted.
	Phones []string `json:"phones,omitempty"`

	// Socials maps platform to profile URL.
	Socials map[string]string `json:"socials,omitempty"`

	// SourceURLs is sorted.
	SourceURLs []string `json:"source_urls"`

	// Methods is sorted by priority.
	Methods []Method `json:"methods"`

	Confidence     float64 `json:"confidence"`
	FirstSeenOrder int     `json:"first_seen_order"`

	Verdict Verdict `json:"verdict"`

	// Disposable is set for addresses on throwaway-mail domains. It does not affect Confidence.
	Disposable bool `json:"disposable,omitempty"`

	// OCRConfidence is the highest OCR confidence seen for the address.
	OCRConfidence float64 `json:"ocr_confidence,omitempty"`
}

// Platforms returns the social platforms of the contact in sorted order.
func (c Contact) Platforms() []string {
	platforms := make([]string, 0, len(c.Socials))
	for p := range c.Socials {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}

// HasMethod reports whether m was observed for the contact.
func (c Contact) HasMethod(m Method) bool {
	for _, got := range c.Methods {
		if got == m {
			return true
		}
	}
	return false
}

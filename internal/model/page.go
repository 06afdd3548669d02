package model

import (
	"net/url"
	"strings"
)

// Page is one unit of input produced by the crawler collaborator.
type Page struct {
	// SourceURL is the absolute URL the content was fetched from.
	SourceURL string `json:"source_url"`

	// SiteURL is the site being crawled. When empty, SourceURL is used for domain matching.
	SiteURL string `json:"site_url,omitempty"`

	// Text is the HTML-stripped body text (or OCR output for ContentOCRText).
	Text string `json:"raw_text"`

	// Mailtos are the mailto: href values found on the page, with or without the scheme.
	Mailtos []string `json:"mailto,omitempty"`

	// Rendered is DOM text captured after JavaScript execution, if any.
	Rendered string `json:"rendered_text,omitempty"`

	// Kind is the kind of Text.
	Kind ContentKind `json:"content_kind"`

	// OCRConfidence is the recognizer's confidence for ContentOCRText pages.
	OCRConfidence float64 `json:"ocr_confidence,omitempty"`
}

// Host returns the lower-cased host of the page's site, or "" when it has none.
func (p Page) Host() string {
	raw := p.SiteURL
	if raw == "" {
		raw = p.SourceURL
	}
	return HostOf(raw)
}

// HostOf extracts the lower-cased host name from a URL or bare host string.
func HostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

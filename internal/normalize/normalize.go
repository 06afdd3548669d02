package normalize

import (
	"net/url"
	"strings"

	"github.com/nao1215/contactscan/internal/model"
)

// Normalize cleans raw text of the given kind for pattern matching.
//
// HTML and rendered text lose their markup first; OCR text is taken as is.
// Then widths and confusables are folded, whitespace is collapsed with newlines
// kept as block boundaries, and disguised addresses are rewritten. Normalize
// never fails and always returns the same output for the same input.
func Normalize(raw string, kind model.ContentKind) model.NormalizedText {
	text := raw
	if kind != model.ContentOCRText {
		text = stripMarkup(text)
	}
	text = fold(text)
	text = collapseSpace(text)
	text, rewrites := deobfuscate(text)

	return model.NormalizedText{
		Text:     text,
		Kind:     kind,
		Rewrites: rewrites,
	}
}

// NormalizePage builds the single text the detector searches for a page.
//
// The layout is the page text, then the rendered DOM text, then one
// "mailto:<address>" line per mailto href whose link is not already in the text.
// Rendered covers the rendered part, or the whole page text for
// ContentRenderedText pages.
func NormalizePage(page model.Page) model.NormalizedText {
	out := Normalize(page.Text, page.Kind)
	if page.Kind == model.ContentRenderedText && out.Text != "" {
		out.Rendered = model.Span{Start: 0, End: len(out.Text)}
	}

	if page.Rendered != "" {
		rendered := Normalize(page.Rendered, model.ContentRenderedText)
		if rendered.Text != "" {
			if out.Text != "" {
				out.Text += "\n"
			}
			offset := len(out.Text)
			for _, sp := range rendered.Rewrites {
				out.Rewrites = append(out.Rewrites, model.Span{Start: sp.Start + offset, End: sp.End + offset})
			}
			if out.Rendered.Len() == 0 {
				out.Rendered.Start = offset
			}
			out.Text += rendered.Text
			out.Rendered.End = len(out.Text)
		}
	}

	if len(page.Mailtos) == 0 {
		return out
	}

	present := strings.ToLower(out.Text)
	seen := make(map[string]bool)
	var b strings.Builder
	b.WriteString(out.Text)
	for _, href := range page.Mailtos {
		for _, addr := range MailtoAddresses(href) {
			if seen[addr] || strings.Contains(present, "mailto:"+addr) {
				continue
			}
			seen[addr] = true
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("mailto:")
			b.WriteString(addr)
		}
	}
	out.Text = b.String()
	return out
}

// MailtoAddresses extracts the lower-cased addresses from a mailto href.
// The "mailto:" scheme is optional, query parameters are dropped and
// comma-separated recipients are split.
func MailtoAddresses(href string) []string {
	href = strings.TrimSpace(href)
	if len(href) >= len("mailto:") && strings.EqualFold(href[:len("mailto:")], "mailto:") {
		href = href[len("mailto:"):]
	}
	href = strings.TrimPrefix(href, "//")
	href, _, _ = strings.Cut(href, "?")
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}

	var addrs []string
	for _, part := range strings.Split(href, ",") {
		addr := strings.ToLower(strings.TrimSpace(part))
		if addr == "" || strings.ContainsAny(addr, " \t\r\n") {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs
}

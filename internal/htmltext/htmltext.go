package htmltext

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// Parser turns a saved HTML document into a page for the engine.
//
// Link targets that are invisible in the body text (tel: and social profile
// hrefs) are written next to their anchors, and microformat and
// schema.org person fields are prefixed with the label the pattern rules
// look for. Everything stays inline so proximity to nearby text is kept.
type Parser struct {
	// baseURL resolves relative hrefs.
	baseURL *url.URL
}

// Document is the result of parsing one HTML file.
type Document struct {
	// Title is the text of the <title> element.
	Title string

	// HTML is the annotated markup.
	HTML string

	// Mailtos are the raw mailto: hrefs, in document order.
	Mailtos []string

	// Phones are the normalized numbers of tel: links.
	Phones []string

	// Socials are the canonical profile URLs linked from the page.
	Socials []string
}

// hint labels an element matched by selector.
type hint struct {
	selector string
	label    string

	// skipInside excludes matches nested in these elements.
	skipInside string
}

var hints = []hint{
	{selector: `[itemprop="worksFor"], .org`, label: "Company"},
	{selector: `[itemprop="name"], .fn`, label: "Name", skipInside: `[itemprop="worksFor"], .org`},
	{selector: `[itemprop="jobTitle"], .title, .job-title`, label: "Title"},
}

// NewParser creates a Parser resolving relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &Parser{baseURL: u}, nil
}

// Parse reads an HTML document and annotates it.
func (p *Parser) Parse(content io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &Document{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		text := strings.ToLower(a.Text())
		lower := strings.ToLower(href)

		switch {
		case strings.HasPrefix(lower, "mailto:"):
			// The normalizer writes the target next to the anchor.
			result.Mailtos = append(result.Mailtos, href)

		case strings.HasPrefix(lower, "tel:"):
			number := strings.TrimSpace(href[len("tel:"):])
			if unescaped, err := url.PathUnescape(number); err == nil {
				number = unescaped
			}
			if phone, ok := pattern.NormalizePhone(number); ok {
				result.Phones = append(result.Phones, phone)
				a.AfterHtml(" (" + html.EscapeString("tel:"+number) + ")")
			}

		default:
			resolved := p.resolveURL(href)
			if resolved == "" {
				return
			}
			profile, ok := pattern.CanonicalSocialURL(resolved)
			if !ok || !isSocialHost(profile) {
				return
			}
			result.Socials = append(result.Socials, profile)
			if !strings.Contains(text, strings.TrimPrefix(profile, "https://")) {
				a.AfterHtml(" (" + html.EscapeString(profile) + ")")
			}
		}
	})

	for _, h := range hints {
		doc.Find(h.selector).Each(func(_ int, s *goquery.Selection) {
			if h.skipInside != "" && s.ParentsFiltered(h.skipInside).Length() > 0 {
				return
			}
			text := strings.TrimSpace(s.Text())
			if text == "" || strings.HasPrefix(strings.ToLower(text), strings.ToLower(h.label)) {
				return
			}
			s.PrependHtml(h.label + ": ")
			s.AppendHtml(";")
		})
	}

	markup, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}
	result.HTML = markup
	return result, nil
}

// Page wraps the document as engine input.
func (d *Document) Page(sourceURL, siteURL string) model.Page {
	return model.Page{
		SourceURL: sourceURL,
		SiteURL:   siteURL,
		Text:      d.HTML,
		Mailtos:   d.Mailtos,
		Kind:      model.ContentHTMLText,
	}
}

// resolveURL resolves a relative URL against the base URL.
// Non-navigational hrefs resolve to "".
func (p *Parser) resolveURL(href string) string {
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "data:", "sms:", "ftp:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// socialHosts are the hosts of the platforms the pattern library knows.
var socialHosts = map[string]bool{
	"linkedin.com":  true,
	"twitter.com":   true,
	"x.com":         true,
	"facebook.com":  true,
	"fb.com":        true,
	"instagram.com": true,
	"github.com":    true,
	"youtube.com":   true,
	"tiktok.com":    true,
	"t.me":          true,
}

func isSocialHost(profileURL string) bool {
	host := model.HostOf(profileURL)
	if socialHosts[host] {
		return true
	}
	// country subdomains such as uk.linkedin.com
	_, parent, ok := strings.Cut(host, ".")
	return ok && parent == "linkedin.com"
}

package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/contactscan/internal/model"
)

// blockElements start a new structural block. Everything else is inline.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Body: true, atom.Caption: true, atom.Dd: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true,
	atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Head: true, atom.Header: true,
	atom.Hr: true, atom.Html: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tbody: true, atom.Tfoot: true, atom.Thead: true, atom.Title: true, atom.Tr: true,
	atom.Ul: true,
}

// stripMarkup removes HTML tags from raw and decodes entities.
//
// Block elements become a newline, <br> a model.LineBreak and other elements a
// space. The targets of mailto links are written after the link text as
// "(mailto:address)" unless the text already shows the address. Tokens that
// look like tags but do not name an HTML element, such as <jane@example.com>,
// are kept as written. Script and style bodies are dropped; the raw-text
// bodies of noscript and friends are stripped recursively.
func stripMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))

	z := html.NewTokenizer(strings.NewReader(raw))
	var parent atom.Atom
	var link mailtoLink
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// strings.Reader only ever ends with io.EOF
			link.close(&b)
			return b.String()

		case html.TextToken:
			text := string(z.Text())
			switch parent {
			case atom.Script, atom.Style:
			case atom.Noscript, atom.Noembed, atom.Noframes, atom.Iframe, atom.Xmp:
				b.WriteString(stripMarkup(text))
			default:
				b.WriteString(text)
			}

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Raw must be copied before TagName, which lower-cases the buffer in place.
			source := string(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == 0 {
				b.WriteString(source)
				continue
			}

			var addrs []string
			if (a == atom.A || a == atom.Area) && tt != html.EndTagToken {
				addrs = mailtoAttr(z)
			}
			if a == atom.A {
				link.close(&b)
			}

			parent = 0
			if tt == html.StartTagToken {
				parent = a
			}
			switch {
			case blockElements[a]:
				b.WriteByte('\n')
			case a == atom.Br:
				b.WriteRune(model.LineBreak)
			default:
				b.WriteByte(' ')
			}

			switch {
			case a == atom.A && tt == html.StartTagToken:
				link = mailtoLink{addrs: addrs, start: b.Len()}
			case len(addrs) > 0:
				// <area> and self-closed anchors have no text of their own.
				writeMailtos(&b, addrs)
				b.WriteByte(' ')
			}

		case html.CommentToken, html.DoctypeToken:
			b.WriteByte(' ')
		}
	}
}

// mailtoLink is an open <a> element whose mailto targets are still to be written.
type mailtoLink struct {
	addrs []string

	// start is where the link text begins in the output.
	start int
}

// close writes the targets the link text did not show and forgets the link.
func (l *mailtoLink) close(b *strings.Builder) {
	if len(l.addrs) == 0 {
		return
	}
	text := strings.ToLower(b.String()[l.start:])
	var missing []string
	for _, addr := range l.addrs {
		if !strings.Contains(text, addr) {
			missing = append(missing, addr)
		}
	}
	if len(missing) > 0 {
		b.WriteByte(' ')
		writeMailtos(b, missing)
	}
	*l = mailtoLink{}
}

func writeMailtos(b *strings.Builder, addrs []string) {
	for i, addr := range addrs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("(mailto:")
		b.WriteString(addr)
		b.WriteByte(')')
	}
}

// mailtoAttr returns the addresses of a mailto href on the current tag.
// It must be called after TagName.
func mailtoAttr(z *html.Tokenizer) []string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			href := strings.TrimSpace(string(val))
			if len(href) >= len("mailto:") && strings.EqualFold(href[:len("mailto:")], "mailto:") {
				return MailtoAddresses(href)
			}
			return nil
		}
		if !more {
			return nil
		}
	}
}

package associate

import (
	"log/slog"
	"sort"

	"github.com/nao1215/contactscan/internal/model"
)

// DefaultWindow is the default attribution window in characters.
const DefaultWindow = 200

// FollowingLinePenalty is added to the distance of an attribute for every line
// it sits below the email, so a label above an address beats one on the next line.
const FollowingLinePenalty = 25

// Associator attributes nearby names, titles, companies, phones and social
// profiles to the email candidates of one page. It never looks across pages.
type Associator struct {
	window       int
	headingNames bool
	inferNames   bool
	inferCompany bool
	logger       *slog.Logger
}

// Option configures an Associator.
type Option func(*Associator)

// WithWindow sets the attribution window in characters.
func WithWindow(chars int) Option {
	return func(a *Associator) {
		a.window = chars
	}
}

// WithHeadingNames takes the name of an email with no name nearby from the
// closest heading above it, such as "<h3>Jane Doe</h3>" over a contact paragraph.
func WithHeadingNames(enabled bool) Option {
	return func(a *Associator) {
		a.headingNames = enabled
	}
}

// WithInferNames derives a name from a first.last local part when nothing is attributed.
func WithInferNames(enabled bool) Option {
	return func(a *Associator) {
		a.inferNames = enabled
	}
}

// WithInferCompany derives a company from the email domain when nothing is attributed.
func WithInferCompany(enabled bool) Option {
	return func(a *Associator) {
		a.inferCompany = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Associator) {
		a.logger = logger
	}
}

// New creates an Associator.
func New(opts ...Option) *Associator {
	a := &Associator{
		window: DefaultWindow,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.window < 0 {
		a.window = 0
	}
	return a
}

// Window returns the attribution window in characters.
func (a *Associator) Window() int {
	return a.window
}

// Associate builds one record per email candidate.
//
// An attribute is considered when it sits in the same block as the email and
// no more than the window away. An attribute on a later line of the block
// pays FollowingLinePenalty per line, capped at the window. Name, title and
// company go to the closest candidate; on a tie the one before the email
// wins. Phones and social profiles collect every candidate in range, keeping
// the smallest distance per value. Emails with nothing nearby still get a record.
//
// The heading and inference fallbacks only fill a name or company that is
// still empty, and their values sit just outside the window.
func (a *Associator) Associate(cands []model.Candidate) []model.AssociatedRecord {
	valid := make([]model.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Value == "" || c.Chars.Start < 0 || c.Chars.End < c.Chars.Start || c.Block < 0 {
			a.logger.Warn("dropping candidate with invalid position",
				"kind", c.Kind.String(), "start", c.Chars.Start, "end", c.Chars.End, "url", c.SourceURL)
			continue
		}
		valid = append(valid, c)
	}

	var records []model.AssociatedRecord
	for _, email := range valid {
		if email.Kind != model.KindEmail {
			continue
		}
		rec := a.associateOne(email, valid)
		if a.headingNames && rec.Name.IsZero() {
			rec.Name = a.headingName(email, valid)
		}
		a.infer(&rec, valid)
		records = append(records, rec)
	}
	return records
}

// nearest tracks the best single-valued attribute seen so far.
type nearest struct {
	attr   model.Attribute
	before bool
}

func (n *nearest) offer(value string, dist int, before bool) {
	switch {
	case n.attr.IsZero(), dist < n.attr.Distance:
	case dist == n.attr.Distance && before && !n.before:
	default:
		return
	}
	n.attr = model.Attribute{Value: value, Distance: dist}
	n.before = before
}

func (a *Associator) associateOne(email model.Candidate, cands []model.Candidate) model.AssociatedRecord {
	rec := model.AssociatedRecord{
		Email:     email.Value,
		Method:    email.Method,
		Span:      email.Span,
		SourceURL: email.SourceURL,
	}

	var name, title, company nearest
	phones := make(map[string]int)
	socials := make(map[string]model.SocialAttribute)

	for _, c := range cands {
		if c.Kind == model.KindEmail || c.Block != email.Block {
			continue
		}
		dist := email.Chars.Gap(c.Chars)
		if dist > a.window {
			continue
		}
		if lines := c.Line - email.Line; lines > 0 {
			dist = min(dist+lines*FollowingLinePenalty, a.window)
		}
		before := c.Chars.Start < email.Chars.Start

		switch c.Kind {
		case model.KindName:
			name.offer(c.Value, dist, before)
		case model.KindTitle:
			title.offer(c.Value, dist, before)
		case model.KindCompany:
			company.offer(c.Value, dist, before)
		case model.KindPhone:
			if d, ok := phones[c.Value]; !ok || dist < d {
				phones[c.Value] = dist
			}
		case model.KindSocial:
			if s, ok := socials[c.Value]; !ok || dist < s.Distance {
				socials[c.Value] = model.SocialAttribute{Platform: c.Platform, URL: c.Value, Distance: dist}
			}
		}
	}

	rec.Name = name.attr
	rec.Title = title.attr
	rec.Company = company.attr

	for value, dist := range phones {
		rec.Phones = append(rec.Phones, model.Attribute{Value: value, Distance: dist})
	}
	sort.Slice(rec.Phones, func(i, j int) bool {
		if rec.Phones[i].Distance != rec.Phones[j].Distance {
			return rec.Phones[i].Distance < rec.Phones[j].Distance
		}
		return rec.Phones[i].Value < rec.Phones[j].Value
	})

	for _, s := range socials {
		rec.Socials = append(rec.Socials, s)
	}
	sort.Slice(rec.Socials, func(i, j int) bool {
		if rec.Socials[i].Distance != rec.Socials[j].Distance {
			return rec.Socials[i].Distance < rec.Socials[j].Distance
		}
		return rec.Socials[i].URL < rec.Socials[j].URL
	})

	return rec
}

// headingName returns the closest name heading in an earlier block that is no
// further than the window from email, or the zero Attribute.
func (a *Associator) headingName(email model.Candidate, cands []model.Candidate) model.Attribute {
	var best model.Candidate
	found := false
	for _, c := range cands {
		if c.Kind != model.KindName || !c.Heading || c.Block >= email.Block {
			continue
		}
		if email.Chars.Gap(c.Chars) > a.window {
			continue
		}
		if !found || c.Chars.Start > best.Chars.Start {
			best, found = c, true
		}
	}
	if !found {
		return model.Attribute{}
	}
	return model.Attribute{Value: best.Value, Distance: a.window + 1}
}

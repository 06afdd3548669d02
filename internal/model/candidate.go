package model

// LineBreak separates lines inside a block of normalized text, as <br> does in HTML.
const LineBreak = '\u2028'

// Span is a half-open [Start, End) offset range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Valid reports whether the span is well formed and fits in a text of length n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Overlaps reports whether the two spans share at least one position.
// Empty spans overlap nothing.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Gap returns the number of positions separating the two spans, 0 when they overlap or touch.
func (s Span) Gap(o Span) int {
	switch {
	case o.End <= s.Start:
		return s.Start - o.End
	case s.End <= o.Start:
		return o.Start - s.End
	default:
		return 0
	}
}

// NormalizedText is the output of the normalizer: cleaned text plus the
// structural facts later stages rely on.
type NormalizedText struct {
	// Text is the cleaned text. Newlines delimit structural blocks and
	// LineBreak separates lines within a block.
	Text string

	// Kind is the content kind of the page the text came from.
	Kind ContentKind

	// Rewrites are byte ranges of addresses that were rebuilt from a disguised form.
	Rewrites []Span

	// Rendered is the byte range holding rendered DOM text, empty when the page had none.
	Rendered Span
}

// InRewrite reports whether sp overlaps a rewritten address.
func (n NormalizedText) InRewrite(sp Span) bool {
	for _, r := range n.Rewrites {
		if r.Overlaps(sp) {
			return true
		}
	}
	return false
}

// InRendered reports whether sp starts inside the rendered region.
func (n NormalizedText) InRendered(sp Span) bool {
	return n.Rendered.Len() > 0 && sp.Start >= n.Rendered.Start && sp.Start < n.Rendered.End
}

// Candidate is one detection hit on one page.
type Candidate struct {
	// Value is the normalized value (address, phone number, URL, name, title or company).
	Value string `json:"value"`

	// Kind is what the value represents.
	Kind Kind `json:"kind"`

	// Method is how the value was found.
	Method Method `json:"method"`

	// Span is the byte range in the normalized text.
	Span Span `json:"span"`

	// Chars is the same range counted in characters.
	Chars Span `json:"chars"`

	// Block is the index of the newline-delimited block holding the span.
	Block int `json:"block"`

	// Line is the index of the line holding the span, counting both block
	// boundaries and line breaks.
	Line int `json:"line"`

	// Heading marks a candidate that fills its whole block, the way a section
	// heading or a name card title does.
	Heading bool `json:"heading,omitempty"`

	// Platform names the social network for KindSocial candidates.
	Platform string `json:"platform,omitempty"`

	// Rule is the name of the pattern rule that produced the hit.
	Rule string `json:"rule,omitempty"`

	// SourceURL is the page the hit came from.
	SourceURL string `json:"source_url"`
}

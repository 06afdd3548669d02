package detect

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
)

// Detector applies a pattern library to normalized text.
// It holds no per-page state and is safe for concurrent use.
type Detector struct {
	lib    *pattern.Library
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for warnings about malformed matches.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a Detector over lib.
func New(lib *pattern.Library, opts ...Option) *Detector {
	d := &Detector{
		lib:    lib,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// hit is a candidate with the priority of the rule that produced it.
type hit struct {
	model.Candidate
	priority int
}

// Detect returns the candidates found in text, in document order.
//
// Rules run in priority order. A match overlapping an accepted candidate of the
// same kind is dropped, so the earlier rule wins. Each email value appears at
// most once: it keeps the strongest method seen on the page and the position
// of its first occurrence.
func (d *Detector) Detect(text model.NormalizedText, sourceURL string) []model.Candidate {
	if text.Text == "" {
		return nil
	}

	accepted := make(map[model.Kind][]hit)
	for priority, rule := range d.lib.Rules() {
		for _, m := range d.findAll(rule, text.Text) {
			if !m.Span.Valid(len(text.Text)) || m.Span.Len() == 0 {
				d.logger.Warn("dropping match with invalid span",
					"rule", rule.Name, "start", m.Span.Start, "end", m.Span.End, "url", sourceURL)
				continue
			}
			if !inScope(rule.Scope, text, m.Span) {
				continue
			}
			if overlapsAny(accepted[rule.Kind], m.Span) {
				continue
			}

			accepted[rule.Kind] = append(accepted[rule.Kind], hit{
				Candidate: model.Candidate{
					Value:     m.Value,
					Kind:      rule.Kind,
					Method:    adjustMethod(rule.Kind, rule.Method, text, m.Span),
					Span:      m.Span,
					Platform:  rule.Platform,
					Rule:      rule.Name,
					SourceURL: sourceURL,
				},
				priority: priority,
			})
		}
	}

	hits := collapseEmails(accepted[model.KindEmail])
	anchors := append(append([]hit(nil), accepted[model.KindEmail]...), accepted[model.KindSocial]...)
	hits = append(hits, accepted[model.KindSocial]...)
	hits = append(hits, without(accepted[model.KindPhone], anchors)...)
	hits = append(hits, without(accepted[model.KindTitle], anchors)...)
	hits = append(hits, without(accepted[model.KindCompany], anchors)...)

	// A capitalized company or title phrase also reads as a name.
	nameBlockers := append(append([]hit(nil), anchors...), accepted[model.KindTitle]...)
	nameBlockers = append(nameBlockers, accepted[model.KindCompany]...)
	hits = append(hits, without(accepted[model.KindName], nameBlockers)...)

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Span.Start != hits[j].Span.Start {
			return hits[i].Span.Start < hits[j].Span.Start
		}
		return hits[i].priority < hits[j].priority
	})

	out := make([]model.Candidate, len(hits))
	for i, h := range hits {
		out[i] = h.Candidate
	}
	locate(text.Text, out)
	return out
}

// findAll runs one rule, turning a panic into an empty result.
func (d *Detector) findAll(rule *pattern.CompiledRule, text string) (matches []pattern.Match) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("pattern rule failed", "rule", rule.Name, "panic", r)
			matches = nil
		}
	}()
	return rule.FindAll(text)
}

func inScope(scope pattern.Scope, text model.NormalizedText, sp model.Span) bool {
	switch scope {
	case pattern.ScopeOutsideRewrites:
		return !text.InRewrite(sp)
	case pattern.ScopeInsideRewrites:
		return text.InRewrite(sp)
	default:
		return true
	}
}

// adjustMethod applies region rules to email methods: anything on an OCR page
// is OCR, and mailto or plain hits in rendered text are JavaScriptRendered.
func adjustMethod(kind model.Kind, method model.Method, text model.NormalizedText, sp model.Span) model.Method {
	if kind != model.KindEmail {
		return method
	}
	if text.Kind == model.ContentOCRText {
		return model.MethodOCR
	}
	if text.InRendered(sp) && (method == model.MethodMailtoLink || method == model.MethodStandardPattern) {
		return model.MethodJavaScriptRendered
	}
	return method
}

func overlapsAny(hits []hit, sp model.Span) bool {
	for _, h := range hits {
		if h.Span.Overlaps(sp) {
			return true
		}
	}
	return false
}

// without returns the hits that overlap none of blockers.
func without(hits, blockers []hit) []hit {
	out := hits[:0:0]
	for _, h := range hits {
		if !overlapsAny(blockers, h.Span) {
			out = append(out, h)
		}
	}
	return out
}

// collapseEmails merges hits with the same address into one.
func collapseEmails(hits []hit) []hit {
	index := make(map[string]int, len(hits))
	out := make([]hit, 0, len(hits))
	for _, h := range hits {
		i, ok := index[h.Value]
		if !ok {
			index[h.Value] = len(out)
			out = append(out, h)
			continue
		}

		cur := &out[i]
		if h.Method.Stronger(cur.Method) {
			cur.Method = h.Method
			cur.Rule = h.Rule
		}
		if h.Span.Start < cur.Span.Start {
			cur.Span = h.Span
			cur.priority = h.priority
		}
	}
	return out
}

// fillsBlock reports whether sp runs from one newline, or the start of text, to the next.
func fillsBlock(text string, sp model.Span) bool {
	return (sp.Start == 0 || text[sp.Start-1] == '\n') &&
		(sp.End == len(text) || text[sp.End] == '\n')
}

// locate fills in the character range, block and line index of candidates sorted by span start.
func locate(text string, cands []model.Candidate) {
	offset, chars, block, breaks := 0, 0, 0, 0
	for i := range cands {
		start := cands[i].Span.Start
		skipped := text[offset:start]
		chars += utf8.RuneCountInString(skipped)
		block += strings.Count(skipped, "\n")
		breaks += strings.Count(skipped, string(model.LineBreak))
		offset = start

		cands[i].Block = block
		cands[i].Line = block + breaks
		cands[i].Heading = fillsBlock(text, cands[i].Span)
		cands[i].Chars = model.Span{
			Start: chars,
			End:   chars + utf8.RuneCountInString(text[start:cands[i].Span.End]),
		}
	}
}

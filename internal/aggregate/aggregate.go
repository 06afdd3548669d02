package aggregate

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
	"github.com/nao1215/contactscan/internal/score"
)

// Aggregator owns the run-level contact table.
//
// Ingest and Finalize are serialized by a mutex, so they may be called from
// any goroutine. The merge is commutative and idempotent: the final contacts
// do not depend on the order records arrive in.
type Aggregator struct {
	mu       sync.Mutex
	scorer   *score.Scorer
	entries  map[string]*entry
	strict   bool
	logger   *slog.Logger
	disposed func(email string) bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithStrict makes invariant violations panic instead of dropping the record.
func WithStrict(strict bool) Option {
	return func(a *Aggregator) {
		a.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithDisposableCheck sets the function used to flag throwaway addresses.
func WithDisposableCheck(fn func(email string) bool) Option {
	return func(a *Aggregator) {
		a.disposed = fn
	}
}

// New creates an empty Aggregator that corroborates scores with scorer.
func New(scorer *score.Scorer, opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer:  scorer,
		entries: make(map[string]*entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// firstSeen orders sightings by input position.
type firstSeen struct {
	page   int
	offset int
}

func (f firstSeen) before(o firstSeen) bool {
	if f.page != o.page {
		return f.page < o.page
	}
	return f.offset < o.offset
}

// entry is the mutable state behind one Contact.
type entry struct {
	email      string
	name       model.Attribute
	title      model.Attribute
	company    model.Attribute
	phones     map[string]bool
	socials    map[string]model.SocialAttribute
	sources    map[string]bool
	methods    map[model.Method]bool
	best       float64
	confidence float64
	verdict    model.Verdict
	ocr        float64
	seen       firstSeen
}

// Ingest merges rec into the contact table.
func (a *Aggregator) Ingest(rec model.AssociatedRecord) error {
	key := model.NormalizeEmail(rec.Email)
	if !pattern.ValidEmail(key) {
		return fmt.Errorf("%w: email %q", ErrInvalidRecord, rec.Email)
	}
	if err := checkRecord(rec); err != nil {
		return a.violation(key, err)
	}
	seen := firstSeen{page: rec.PageIndex, offset: rec.Span.Start}

	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[key]
	if !ok {
		e = &entry{
			email:   key,
			phones:  make(map[string]bool),
			socials: make(map[string]model.SocialAttribute),
			sources: make(map[string]bool),
			methods: make(map[model.Method]bool),
			seen:    seen,
		}
		a.entries[key] = e
	}

	e.merge(rec, seen)
	if e.verdict == model.VerdictInvalid {
		e.confidence = 0
	} else {
		e.confidence = max(e.confidence, a.scorer.Corroborate(e.best, len(e.sources), e.verdict))
	}
	return nil
}

// checkRecord reports a record that breaks what the scoring and association
// stages guarantee: a score in [0,1] and non-negative attribution distances.
func checkRecord(rec model.AssociatedRecord) error {
	if math.IsNaN(rec.Score) || rec.Score < 0 || rec.Score > 1 {
		return fmt.Errorf("score %v outside [0,1]", rec.Score)
	}
	for _, attr := range []model.Attribute{rec.Name, rec.Title, rec.Company} {
		if attr.Distance < 0 {
			return fmt.Errorf("negative distance %d for %q", attr.Distance, attr.Value)
		}
	}
	for _, p := range rec.Phones {
		if p.Distance < 0 {
			return fmt.Errorf("negative distance %d for %q", p.Distance, p.Value)
		}
	}
	for _, soc := range rec.Socials {
		if soc.Distance < 0 {
			return fmt.Errorf("negative distance %d for %q", soc.Distance, soc.URL)
		}
	}
	return nil
}

func (a *Aggregator) violation(key string, cause error) error {
	if a.strict {
		panic(fmt.Sprintf("aggregate: record for %q: %v", key, cause))
	}
	a.logger.Error("dropping record after aggregation invariant violation",
		"email", key, "error", cause)
	return fmt.Errorf("%w: record for %q: %w", ErrInvariantViolation, key, cause)
}

func (e *entry) merge(rec model.AssociatedRecord, seen firstSeen) {
	e.sources[rec.SourceURL] = true
	e.methods[rec.Method] = true

	if rec.Name.Closer(e.name) {
		e.name = rec.Name
	}
	if rec.Title.Closer(e.title) {
		e.title = rec.Title
	}
	if rec.Company.Closer(e.company) {
		e.company = rec.Company
	}

	for _, p := range rec.Phones {
		e.phones[p.Value] = true
	}
	for _, s := range rec.Socials {
		cur, ok := e.socials[s.Platform]
		if !ok || s.Distance < cur.Distance || (s.Distance == cur.Distance && s.URL < cur.URL) {
			e.socials[s.Platform] = s
		}
	}

	e.best = max(e.best, rec.Score)
	e.ocr = max(e.ocr, rec.OCRConfidence)
	e.verdict = mergeVerdict(e.verdict, rec.Verdict)
	if seen.before(e.seen) {
		e.seen = seen
	}
}

// mergeVerdict combines verdicts so that Invalid beats Valid beats Unknown.
func mergeVerdict(a, b model.Verdict) model.Verdict {
	switch {
	case a == model.VerdictInvalid || b == model.VerdictInvalid:
		return model.VerdictInvalid
	case a == model.VerdictValid || b == model.VerdictValid:
		return model.VerdictValid
	default:
		return model.VerdictUnknown
	}
}

// Len returns the number of contacts in the table.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Finalize returns the contacts whose confidence is at least threshold, ordered by
// confidence descending and then by first sighting.
func (a *Aggregator) Finalize(threshold float64) []model.Contact {
	all := a.Snapshot()
	out := make([]model.Contact, 0, len(all))
	for _, c := range all {
		if c.Confidence >= threshold {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns every contact in Finalize order, regardless of confidence.
func (a *Aggregator) Snapshot() []model.Contact {
	a.mu.Lock()
	entries := make([]*entry, 0, len(a.entries))
	for _, e := range a.entries {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].seen != entries[j].seen {
			return entries[i].seen.before(entries[j].seen)
		}
		return entries[i].email < entries[j].email
	})
	contacts := make([]model.Contact, len(entries))
	for i, e := range entries {
		contacts[i] = a.contact(e, i)
	}
	a.mu.Unlock()

	sort.SliceStable(contacts, func(i, j int) bool {
		if contacts[i].Confidence != contacts[j].Confidence {
			return contacts[i].Confidence > contacts[j].Confidence
		}
		return contacts[i].FirstSeenOrder < contacts[j].FirstSeenOrder
	})
	return contacts
}

// contact materializes e. order is its rank by first sighting.
func (a *Aggregator) contact(e *entry, order int) model.Contact {
	c := model.Contact{
		Email:          e.email,
		Name:           e.name.Value,
		Title:          e.title.Value,
		Company:        e.company.Value,
		Phones:         sortedKeys(e.phones),
		SourceURLs:     sortedKeys(e.sources),
		Confidence:     e.confidence,
		FirstSeenOrder: order,
		Verdict:        e.verdict,
		OCRConfidence:  e.ocr,
	}
	if len(e.socials) > 0 {
		c.Socials = make(map[string]string, len(e.socials))
		for platform, s := range e.socials {
			c.Socials[platform] = s.URL
		}
	}
	for _, m := range model.Methods {
		if e.methods[m] {
			c.Methods = append(c.Methods, m)
		}
	}
	if a.disposed != nil {
		c.Disposable = a.disposed(e.email)
	}
	return c
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

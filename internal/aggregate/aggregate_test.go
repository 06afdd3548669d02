package aggregate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/score"
)

func newAggregator(opts ...Option) *Aggregator {
	return New(score.New(score.DefaultParams()), opts...)
}

func record(email, source string, page int, s float64) model.AssociatedRecord {
	return model.AssociatedRecord{
		Email:     email,
		Method:    model.MethodStandardPattern,
		SourceURL: source,
		PageIndex: page,
		Score:     s,
	}
}

func ingestAll(t *testing.T, a *Aggregator, recs ...model.AssociatedRecord) {
	t.Helper()
	for _, r := range recs {
		if err := a.Ingest(r); err != nil {
			t.Fatalf("Ingest(%s) failed: %v", r.Email, err)
		}
	}
}

// TestIngestIdempotent tests that ingesting the same record twice changes nothing.
func TestIngestIdempotent(t *testing.T) {
	t.Parallel()

	rec := record("jane@acme.com", "https://acme.com/team", 0, 0.9)
	rec.Name = model.Attribute{Value: "Jane Doe", Distance: 4}
	rec.Phones = []model.Attribute{{Value: "5551234567", Distance: 12}}

	once := newAggregator()
	ingestAll(t, once, rec)
	twice := newAggregator()
	ingestAll(t, twice, rec, rec)

	if !reflect.DeepEqual(once.Snapshot(), twice.Snapshot()) {
		t.Errorf("expected identical contacts:\n%+v\n%+v", once.Snapshot(), twice.Snapshot())
	}
}

// TestIngestOrderIndependent tests that every ingestion order gives the same contacts.
func TestIngestOrderIndependent(t *testing.T) {
	t.Parallel()

	a1 := record("jane@acme.com", "https://acme.com/about", 0, 0.85)
	a1.Name = model.Attribute{Value: "J. Doe", Distance: 40}
	a1.Socials = []model.SocialAttribute{{Platform: "twitter", URL: "https://twitter.com/jdoe", Distance: 30}}

	a2 := record("Jane@Acme.com", "https://acme.com/team", 2, 0.95)
	a2.Method = model.MethodMailtoLink
	a2.Name = model.Attribute{Value: "Jane Doe", Distance: 5}
	a2.Title = model.Attribute{Value: "CTO", Distance: 12}
	a2.Socials = []model.SocialAttribute{{Platform: "twitter", URL: "https://twitter.com/janedoe", Distance: 8}}

	b := record("bob@acme.com", "https://acme.com/team", 2, 0.85)
	b.Phones = []model.Attribute{{Value: "5559876543", Distance: 3}}

	c := record("carol@acme.com", "https://acme.com/about", 0, 0.85)
	c.Span = model.Span{Start: 100, End: 114}

	orders := [][]model.AssociatedRecord{
		{a1, a2, b, c},
		{c, b, a2, a1},
		{b, a2, c, a1},
		{a2, a1, a1, c, b},
	}

	var want []model.Contact
	for i, order := range orders {
		a := newAggregator()
		ingestAll(t, a, order...)
		got := a.Snapshot()
		if i == 0 {
			want = got
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("order %d differs:\n got %+v\nwant %+v", i, got, want)
		}
	}

	jane := want[0]
	if jane.Email != "jane@acme.com" || jane.Name != "Jane Doe" || jane.Title != "CTO" {
		t.Errorf("unexpected merged contact %+v", jane)
	}
	if jane.Socials["twitter"] != "https://twitter.com/janedoe" {
		t.Errorf("expected the closer profile, got %v", jane.Socials)
	}
	if !jane.HasMethod(model.MethodMailtoLink) || !jane.HasMethod(model.MethodStandardPattern) {
		t.Errorf("expected both methods, got %v", jane.Methods)
	}
	if len(jane.SourceURLs) != 2 {
		t.Errorf("expected 2 sources, got %v", jane.SourceURLs)
	}
}

// TestIngestMonotonic tests that corroboration never lowers confidence.
func TestIngestMonotonic(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	sightings := []model.AssociatedRecord{
		record("jane@acme.com", "https://acme.com/a", 0, 0.85),
		record("jane@acme.com", "https://acme.com/b", 1, 0.65),
		record("jane@acme.com", "https://acme.com/b", 1, 0.65),
		record("jane@acme.com", "https://acme.com/c", 2, 0.55),
		record("jane@acme.com", "https://acme.com/d", 3, 0.55),
		record("jane@acme.com", "https://acme.com/e", 4, 0.95),
	}

	prev := 0.0
	for i, rec := range sightings {
		ingestAll(t, a, rec)
		got := a.Snapshot()[0].Confidence
		if got < prev {
			t.Fatalf("sighting %d lowered confidence from %v to %v", i, prev, got)
		}
		prev = got
	}
	if prev != 1 {
		t.Errorf("expected capped confidence 1, got %v", prev)
	}
}

// TestIngestCorroboration tests the page-count bonus.
func TestIngestCorroboration(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	ingestAll(t, a,
		record("jane@acme.com", "https://acme.com/a", 0, 0.65),
		record("jane@acme.com", "https://acme.com/b", 1, 0.65),
		record("jane@acme.com", "https://acme.com/c", 2, 0.65),
	)
	if got := a.Snapshot()[0].Confidence; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("expected 0.75 for three pages, got %v", got)
	}
}

// TestIngestDeduplicatesCase tests that case and padding variants merge.
func TestIngestDeduplicatesCase(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	ingestAll(t, a,
		record("John@Example.com", "https://example.com/a", 0, 0.85),
		record(" john@example.com ", "https://example.com/b", 1, 0.85),
	)

	contacts := a.Finalize(0)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if contacts[0].Email != "john@example.com" {
		t.Errorf("got email %q", contacts[0].Email)
	}
	if a.Len() != 1 {
		t.Errorf("expected Len 1, got %d", a.Len())
	}
}

// TestFinalizeThreshold tests that included and excluded contacts partition the table.
func TestFinalizeThreshold(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	ingestAll(t, a,
		record("a@x.com", "u1", 0, 0.95),
		record("b@x.com", "u1", 0, 0.85),
		record("c@x.com", "u1", 0, 0.90),
		record("d@x.com", "u1", 0, 0.55),
	)

	all := a.Snapshot()
	included := a.Finalize(0.9)

	for _, c := range included {
		if c.Confidence < 0.9 {
			t.Errorf("%s below threshold: %v", c.Email, c.Confidence)
		}
	}
	excluded := 0
	for _, c := range all {
		if c.Confidence < 0.9 {
			excluded++
		}
	}
	if len(included)+excluded != len(all) {
		t.Errorf("included %d + excluded %d != total %d", len(included), excluded, len(all))
	}

	var emails []string
	for _, c := range included {
		emails = append(emails, c.Email)
	}
	if strings.Join(emails, ",") != "a@x.com,c@x.com" {
		t.Errorf("expected descending confidence order, got %v", emails)
	}
}

// TestFinalizeTieOrder tests that equal confidence falls back to first sighting.
func TestFinalizeTieOrder(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	late := record("late@x.com", "u2", 3, 0.85)
	early := record("early@x.com", "u1", 1, 0.85)
	ingestAll(t, a, late, early)

	got := a.Finalize(0)
	if got[0].Email != "early@x.com" || got[0].FirstSeenOrder != 0 || got[1].FirstSeenOrder != 1 {
		t.Errorf("unexpected order %+v", got)
	}
}

// TestIngestInvalid tests rejection of records with bad addresses.
func TestIngestInvalid(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	for _, email := range []string{"", "not-an-email", "a@b"} {
		if err := a.Ingest(record(email, "u", 0, 0.9)); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("Ingest(%q): expected ErrInvalidRecord, got %v", email, err)
		}
	}
	if a.Len() != 0 {
		t.Errorf("expected an empty table, got %d", a.Len())
	}
}

// TestIngestInvalidVerdict tests that an invalid verdict zeroes the contact.
func TestIngestInvalidVerdict(t *testing.T) {
	t.Parallel()

	rec := record("ghost@x.com", "u1", 0, 0)
	rec.Verdict = model.VerdictInvalid

	a := newAggregator()
	ingestAll(t, a, rec, record("ghost@x.com", "u2", 1, 0.95))

	got := a.Snapshot()[0]
	if got.Confidence != 0 || got.Verdict != model.VerdictInvalid {
		t.Errorf("expected zero confidence and invalid verdict, got %+v", got)
	}
}

// TestIngestInvariantViolation tests the strict and lenient responses to a malformed record.
func TestIngestInvariantViolation(t *testing.T) {
	t.Parallel()

	negative := record("jane@x.com", "u2", 1, 0.9)
	negative.Name = model.Attribute{Value: "Jane Doe", Distance: -3}
	phone := record("jane@x.com", "u2", 1, 0.9)
	phone.Phones = []model.Attribute{{Value: "5551234567", Distance: -1}}

	bad := []struct {
		name string
		rec  model.AssociatedRecord
	}{
		{"score above one", record("jane@x.com", "u2", 1, 1.5)},
		{"negative score", record("jane@x.com", "u2", 1, -0.1)},
		{"score not a number", record("jane@x.com", "u2", 1, math.NaN())},
		{"negative name distance", negative},
		{"negative phone distance", phone},
	}

	for _, tt := range bad {
		t.Run("lenient drops "+tt.name, func(t *testing.T) {
			t.Parallel()

			a := newAggregator()
			ingestAll(t, a, record("jane@x.com", "u1", 0, 0.85))

			err := a.Ingest(tt.rec)
			if !errors.Is(err, ErrInvariantViolation) {
				t.Fatalf("expected ErrInvariantViolation, got %v", err)
			}
			got := a.Snapshot()[0]
			if len(got.SourceURLs) != 1 || got.Confidence != 0.85 || got.Name != "" || len(got.Phones) != 0 {
				t.Errorf("expected the record to be dropped, got %+v", got)
			}
		})

		t.Run("strict panics on "+tt.name, func(t *testing.T) {
			t.Parallel()

			a := newAggregator(WithStrict(true))
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			_ = a.Ingest(tt.rec)
		})
	}

	t.Run("dropped record creates no contact", func(t *testing.T) {
		t.Parallel()

		a := newAggregator()
		if err := a.Ingest(record("new@x.com", "u", 0, 2)); !errors.Is(err, ErrInvariantViolation) {
			t.Fatalf("expected ErrInvariantViolation, got %v", err)
		}
		if a.Len() != 0 {
			t.Errorf("expected an empty table, got %d contacts", a.Len())
		}
	})
}

// TestDisposableFlag tests that the disposable check flags contacts without changing scores.
func TestDisposableFlag(t *testing.T) {
	t.Parallel()

	a := newAggregator(WithDisposableCheck(func(email string) bool {
		return strings.HasSuffix(email, "@mailinator.com")
	}))
	ingestAll(t, a,
		record("temp@mailinator.com", "u", 0, 0.85),
		record("jane@acme.com", "u", 0, 0.85),
	)

	for _, c := range a.Snapshot() {
		if c.Disposable != (c.Email == "temp@mailinator.com") {
			t.Errorf("%s: unexpected disposable flag %v", c.Email, c.Disposable)
		}
		if c.Confidence != 0.85 {
			t.Errorf("%s: expected unchanged confidence, got %v", c.Email, c.Confidence)
		}
	}
}

// TestIngestConcurrent tests that concurrent ingestion is safe.
func TestIngestConcurrent(t *testing.T) {
	t.Parallel()

	a := newAggregator()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i%10)
			_ = a.Ingest(record(email, fmt.Sprintf("https://x.com/%d", i), i, 0.85))
		}(i)
	}
	wg.Wait()

	if a.Len() != 10 {
		t.Fatalf("expected 10 contacts, got %d", a.Len())
	}
	for _, c := range a.Snapshot() {
		if len(c.SourceURLs) != 5 {
			t.Errorf("%s: expected 5 sources, got %d", c.Email, len(c.SourceURLs))
		}
	}
}

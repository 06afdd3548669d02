package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRunResult(t *testing.T) {
	t.Parallel()

	a := NewRunResult("acme.com")
	b := NewRunResult("acme.com")

	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", a.RunID, err)
	}
	if a.RunID == b.RunID {
		t.Error("expected distinct run IDs")
	}
	if a.Site != "acme.com" || a.StartedAt.IsZero() {
		t.Errorf("unexpected run: %+v", a)
	}
	if a.Contacts == nil {
		t.Error("expected non-nil contacts")
	}
	if a.Duration() != 0 {
		t.Errorf("expected zero duration before finish, got %v", a.Duration())
	}

	a.FinishedAt = a.StartedAt.Add(1500 * time.Millisecond)
	if a.Duration() != 1500*time.Millisecond {
		t.Errorf("got %v", a.Duration())
	}
}

func TestRunResultCountByMethod(t *testing.T) {
	t.Parallel()

	run := &RunResult{Contacts: []Contact{
		{Email: "a@x.com", Methods: []Method{MethodMailtoLink, MethodStandardPattern}},
		{Email: "b@x.com", Methods: []Method{MethodStandardPattern}},
		{Email: "c@x.com", Methods: []Method{MethodOCR}},
	}}

	got := run.CountByMethod()
	want := map[Method]int{MethodMailtoLink: 1, MethodStandardPattern: 2, MethodOCR: 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for m, n := range want {
		if got[m] != n {
			t.Errorf("%s: got %d, want %d", m, got[m], n)
		}
	}
}

func TestContactPlatforms(t *testing.T) {
	t.Parallel()

	c := Contact{
		Socials: map[string]string{
			"twitter":  "https://twitter.com/jane",
			"github":   "https://github.com/jane",
			"linkedin": "https://linkedin.com/in/jane",
		},
		Methods: []Method{MethodObfuscated},
	}

	got := c.Platforms()
	want := []string{"github", "linkedin", "twitter"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("platform %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if !c.HasMethod(MethodObfuscated) || c.HasMethod(MethodOCR) {
		t.Error("unexpected HasMethod result")
	}
	if len((Contact{}).Platforms()) != 0 {
		t.Error("expected no platforms")
	}
}

package report

import (
	"sort"
	"time"

	"github.com/nao1215/contactscan/internal/model"
)

// RunSummary identifies one side of a comparison.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Site      string    `json:"site,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Contacts  int       `json:"contacts"`
}

// ContactChange is an address present in both runs whose record changed.
type ContactChange struct {
	Email  string        `json:"email"`
	Before model.Contact `json:"before"`
	After  model.Contact `json:"after"`
}

// ConfidenceDelta returns After.Confidence minus Before.Confidence.
func (c ContactChange) ConfidenceDelta() float64 {
	return c.After.Confidence - c.Before.Confidence
}

// Comparison is the difference between a previous and a current run.
type Comparison struct {
	Previous RunSummary `json:"previous"`
	Current  RunSummary `json:"current"`

	// Added are contacts only the current run has.
	Added []model.Contact `json:"added"`

	// Removed are contacts only the previous run has.
	Removed []model.Contact `json:"removed"`

	// Changed are contacts whose confidence, verdict or attributes differ.
	Changed []ContactChange `json:"changed"`

	// Unchanged counts contacts identical in both runs.
	Unchanged int `json:"unchanged"`
}

// HasChanges reports whether the runs differ at all.
func (c *Comparison) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Changed) > 0
}

// Compare computes the difference between two runs. Contacts are matched by
// address. Every list in the result is sorted by address.
func Compare(previous, current *model.RunResult) *Comparison {
	c := &Comparison{
		Previous: summarize(previous),
		Current:  summarize(current),
		Added:    make([]model.Contact, 0),
		Removed:  make([]model.Contact, 0),
		Changed:  make([]ContactChange, 0),
	}

	before := make(map[string]model.Contact, len(previous.Contacts))
	for _, contact := range previous.Contacts {
		before[contact.Email] = contact
	}
	seen := make(map[string]bool, len(current.Contacts))
	for _, after := range current.Contacts {
		seen[after.Email] = true
		prev, ok := before[after.Email]
		switch {
		case !ok:
			c.Added = append(c.Added, after)
		case contactChanged(prev, after):
			c.Changed = append(c.Changed, ContactChange{Email: after.Email, Before: prev, After: after})
		default:
			c.Unchanged++
		}
	}
	for _, contact := range previous.Contacts {
		if !seen[contact.Email] {
			c.Removed = append(c.Removed, contact)
		}
	}

	sort.Slice(c.Added, func(i, j int) bool { return c.Added[i].Email < c.Added[j].Email })
	sort.Slice(c.Removed, func(i, j int) bool { return c.Removed[i].Email < c.Removed[j].Email })
	sort.Slice(c.Changed, func(i, j int) bool { return c.Changed[i].Email < c.Changed[j].Email })
	return c
}

func summarize(run *model.RunResult) RunSummary {
	return RunSummary{
		RunID:     run.RunID,
		Site:      run.Site,
		StartedAt: run.StartedAt,
		Contacts:  len(run.Contacts),
	}
}

// contactChanged compares the fields a reader of a report acts on.
// Source URLs and first-seen order are expected to move between runs.
func contactChanged(a, b model.Contact) bool {
	if a.Confidence != b.Confidence || a.Verdict != b.Verdict {
		return true
	}
	if a.Name != b.Name || a.Title != b.Title || a.Company != b.Company {
		return true
	}
	if len(a.Phones) != len(b.Phones) || len(a.Socials) != len(b.Socials) {
		return true
	}
	for i := range a.Phones {
		if a.Phones[i] != b.Phones[i] {
			return true
		}
	}
	for platform, url := range a.Socials {
		if b.Socials[platform] != url {
			return true
		}
	}
	return false
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// PageResult carries one page through the per-page pipeline.
// Each step reads what earlier steps produced and fills in its own part.
type PageResult struct {
	// Page is the input.
	Page Page

	// Index is the position of the page in the run's input.
	Index int

	// Normalized is set by the normalize step.
	Normalized NormalizedText

	// Candidates is set by the detect step, in document order.
	Candidates []Candidate

	// Records is set by the associate step and updated by the validate and score steps.
	Records []AssociatedRecord

	// Steps lists the steps that ran, in order.
	Steps []string
}

// NewPageResult creates a PageResult for the page at position index.
func NewPageResult(page Page, index int) *PageResult {
	return &PageResult{Page: page, Index: index}
}

// RunResult is everything a run hands to the exporter.
type RunResult struct {
	// RunID identifies the run in persisted history.
	RunID string `json:"run_id"`

	// Site is an optional label for the crawled site.
	Site string `json:"site,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Contacts are the finalized contacts at or above MinConfidence, best first.
	Contacts []Contact `json:"contacts"`

	// MinConfidence is the threshold Contacts was filtered with.
	MinConfidence float64 `json:"min_confidence"`

	// TotalContacts counts every aggregated contact, including excluded ones.
	TotalContacts int `json:"total_contacts"`

	// Excluded counts contacts below MinConfidence.
	Excluded int `json:"excluded"`

	// PagesProcessed counts pages that went through the pipeline.
	PagesProcessed int `json:"pages_processed"`

	// DuplicatePages counts pages skipped because identical content was already processed.
	DuplicatePages int `json:"duplicate_pages"`

	// FailedPages counts pages whose pipeline failed.
	FailedPages int `json:"failed_pages"`

	// MethodsUsed lists the distinct extraction methods seen across all contacts.
	MethodsUsed []Method `json:"methods_used"`

	// Interrupted is set when the run was cancelled before the input was exhausted.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewRunResult creates a RunResult with a fresh identifier.
func NewRunResult(site string) *RunResult {
	return &RunResult{
		RunID:     uuid.NewString(),
		Site:      site,
		StartedAt: time.Now(),
		Contacts:  make([]Contact, 0),
	}
}

// Duration returns how long the run took.
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CountByMethod returns how many included contacts observed each method.
func (r *RunResult) CountByMethod() map[Method]int {
	counts := make(map[Method]int)
	for _, c := range r.Contacts {
		for _, m := range c.Methods {
			counts[m]++
		}
	}
	return counts
}

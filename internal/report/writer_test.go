package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/contactscan/internal/model"
)

// createTestRun creates a finished run with sample contacts.
func createTestRun() *model.RunResult {
	run := model.NewRunResult("acme.com")
	run.StartedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run.FinishedAt = run.StartedAt.Add(1500 * time.Millisecond)
	run.PagesProcessed = 3
	run.DuplicatePages = 1
	run.MinConfidence = 0.5
	run.Contacts = []model.Contact{
		{
			Email:      "jane@acme.com",
			Name:       "Jane Doe",
			Title:      "CTO",
			Company:    "Acme Widgets",
			Phones:     []string{"5551234567"},
			Socials:    map[string]string{"linkedin": "https://linkedin.com/in/jane-doe"},
			SourceURLs: []string{"https://acme.com/about", "https://acme.com/team"},
			Methods:    []model.Method{model.MethodMailtoLink, model.MethodStandardPattern},
			Confidence: 1,
			Verdict:    model.VerdictValid,
		},
		{
			Email:          "info@acme.com",
			SourceURLs:     []string{"https://acme.com/contact"},
			Methods:        []model.Method{model.MethodStandardPattern},
			Confidence:     0.8,
			FirstSeenOrder: 1,
		},
	}
	run.TotalContacts = 3
	run.Excluded = 1
	run.MethodsUsed = []model.Method{model.MethodMailtoLink, model.MethodStandardPattern}
	return run
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"CONTACTSCAN REPORT",
			"Site:            acme.com",
			"Pages Processed: 3",
			"Duplicate Pages: 1",
			"Status:          Complete",
			"Excluded:  1 (below 0.50)",
			"Mailto Link:",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "OCR:") {
			t.Error("expected methods without contacts to be hidden")
		}
	})

	t.Run("writes contacts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		for _, want := range []string{
			"[1] jane@acme.com  (1.00, valid)",
			"[2] info@acme.com  (0.80, unknown)",
			"Name:      Jane Doe",
			"LinkedIn:  https://linkedin.com/in/jane-doe",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "Source:") {
			t.Error("sources are only shown in verbose mode")
		}
	})

	t.Run("verbose shows sources and methods", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "Source:    https://acme.com/team") {
			t.Errorf("expected sources, got:\n%s", output)
		}
		if !strings.Contains(output, "Methods:   Mailto Link, Standard Pattern") {
			t.Errorf("expected methods, got:\n%s", output)
		}
	})

	t.Run("show empty lists every method", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "OCR:") {
			t.Error("expected empty methods to be listed")
		}
	})

	t.Run("interrupted run without contacts", func(t *testing.T) {
		t.Parallel()

		run := model.NewRunResult("")
		run.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(run); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "INTERRUPTED") {
			t.Error("expected interrupted status")
		}
		if !strings.Contains(output, "No contacts found") {
			t.Error("expected empty contact section")
		}
		if strings.Contains(output, "Site:") {
			t.Error("expected no site line without a site")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}

		var got model.RunResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got.Contacts) != 2 || got.Contacts[0].Email != "jane@acme.com" {
			t.Errorf("unexpected contacts: %+v", got.Contacts)
		}
		if !strings.Contains(buf.String(), `"methods":["mailto_link","standard_pattern"]`) {
			t.Errorf("expected methods as names, got: %s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"run_id\"") {
			t.Errorf("expected two-space indentation, got: %s", buf.String())
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestRun()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"run_id\"") {
			t.Errorf("expected prefix and tab indentation, got: %s", buf.String())
		}
	})
}

// TestFullJSONWriter tests the versioned JSON wrapper.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestRun()); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Version      string          `json:"version"`
		Run          model.RunResult `json:"run"`
		MethodCounts map[string]int  `json:"method_counts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %q", got.Version)
	}
	if got.Run.Site != "acme.com" {
		t.Errorf("expected site acme.com, got %q", got.Run.Site)
	}
	if got.MethodCounts["standard_pattern"] != 2 || got.MethodCounts["mailto_link"] != 1 {
		t.Errorf("unexpected method counts: %v", got.MethodCounts)
	}
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(*model.RunResult) (int, error) { return 0, errors.New("boom") }
func (failingWriter) WriteComparison(*Comparison) (int, error) { return 0, errors.New("boom") }

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestRun())
		if err != nil {
			t.Fatal(err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))
		if _, err := mw.Write(createTestRun()); err == nil {
			t.Error("expected error")
		}
		if _, err := mw.WriteComparison(Compare(createTestRun(), createTestRun())); err == nil {
			t.Error("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Contact Report",
			"## Summary",
			"## Contacts",
			"acme.com",
			"jane@acme.com",
			"Jane Doe",
			"mermaid",
			"Contacts by Extraction Method",
			"LinkedIn: https://linkedin.com/in/jane-doe",
			"Source: https://acme.com/team",
			"2 contact(s) found.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("interrupted run", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.Interrupted = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(run); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Interrupted") {
			t.Error("expected interrupted status")
		}
		if !strings.Contains(buf.String(), "Results are partial.") {
			t.Error("expected interrupted alert")
		}
	})

	t.Run("no contacts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewRunResult("")); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "No contacts found.") {
			t.Error("expected empty contacts message")
		}
		if strings.Contains(output, "mermaid") {
			t.Error("expected no chart without contacts")
		}
	})
}

// TestCompare tests run comparison.
func TestCompare(t *testing.T) {
	t.Parallel()

	previous := createTestRun()
	current := createTestRun()
	current.Contacts = []model.Contact{
		current.Contacts[0],
		{Email: "bob@acme.com", Confidence: 0.85, Methods: []model.Method{model.MethodStandardPattern}},
		{Email: "alice@acme.com", Confidence: 0.9, Methods: []model.Method{model.MethodMailtoLink}},
	}
	current.Contacts[0].Confidence = 0.95

	c := Compare(previous, current)

	t.Run("classifies contacts", func(t *testing.T) {
		t.Parallel()

		if len(c.Added) != 2 || c.Added[0].Email != "alice@acme.com" || c.Added[1].Email != "bob@acme.com" {
			t.Errorf("unexpected added: %+v", c.Added)
		}
		if len(c.Removed) != 1 || c.Removed[0].Email != "info@acme.com" {
			t.Errorf("unexpected removed: %+v", c.Removed)
		}
		if len(c.Changed) != 1 || c.Changed[0].Email != "jane@acme.com" {
			t.Fatalf("unexpected changed: %+v", c.Changed)
		}
		if d := c.Changed[0].ConfidenceDelta(); d > -0.049 || d < -0.051 {
			t.Errorf("expected delta -0.05, got %v", d)
		}
		if !c.HasChanges() {
			t.Error("expected changes")
		}
		if c.Previous.Contacts != 2 || c.Current.Contacts != 3 {
			t.Errorf("unexpected summaries: %+v %+v", c.Previous, c.Current)
		}
	})

	t.Run("identical runs", func(t *testing.T) {
		t.Parallel()

		same := Compare(createTestRun(), createTestRun())
		if same.HasChanges() {
			t.Errorf("expected no changes, got %+v", same)
		}
		if same.Unchanged != 2 {
			t.Errorf("expected 2 unchanged, got %d", same.Unchanged)
		}
	})

	t.Run("source changes are ignored", func(t *testing.T) {
		t.Parallel()

		moved := createTestRun()
		moved.Contacts[1].SourceURLs = []string{"https://acme.com/imprint"}
		if Compare(createTestRun(), moved).HasChanges() {
			t.Error("expected moved sources not to count as a change")
		}
	})

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(c); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{
			"Added: 2  Removed: 1  Changed: 1  Unchanged: 0",
			"[+] alice@acme.com (0.90)",
			"[-] info@acme.com (0.80)",
			"[~] jane@acme.com (1.00 -> 0.95)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(c); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{"# Run Comparison", "## Added", "## Removed", "## Changed", "bob@acme.com (0.85)"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteComparison(c); err != nil {
			t.Fatal(err)
		}
		var got Comparison
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got.Added) != 2 || got.Unchanged != 0 {
			t.Errorf("unexpected comparison: %+v", got)
		}
	})
}

// TestLabels tests display names for platforms and methods.
func TestLabels(t *testing.T) {
	t.Parallel()

	platforms := map[string]string{
		"linkedin":  "LinkedIn",
		"github":    "GitHub",
		"instagram": "Instagram",
		"telegram":  "Telegram",
	}
	for in, want := range platforms {
		if got := PlatformLabel(in); got != want {
			t.Errorf("PlatformLabel(%q) = %q, want %q", in, got, want)
		}
	}

	methods := map[model.Method]string{
		model.MethodMailtoLink:         "Mailto Link",
		model.MethodStandardPattern:    "Standard Pattern",
		model.MethodJavaScriptRendered: "JavaScript Rendered",
		model.MethodObfuscated:         "Obfuscated",
		model.MethodOCR:                "OCR",
	}
	for in, want := range methods {
		if got := MethodLabel(in); got != want {
			t.Errorf("MethodLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

// TestTruncateString tests string truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

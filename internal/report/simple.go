package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/contactscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists methods no contact was found with.
	showEmpty bool

	// verbose adds source URLs and methods to each contact.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.RunResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSummary(&sb, run)
	w.writeContacts(&sb, run)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.RunResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CONTACTSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:          %s\n", run.RunID)
	if run.Site != "" {
		fmt.Fprintf(sb, "Site:            %s\n", run.Site)
	}
	fmt.Fprintf(sb, "Started:         %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:        %s\n", run.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Pages Processed: %d\n", run.PagesProcessed)
	if run.DuplicatePages > 0 {
		fmt.Fprintf(sb, "Duplicate Pages: %d\n", run.DuplicatePages)
	}
	if run.FailedPages > 0 {
		fmt.Fprintf(sb, "Failed Pages:    %d\n", run.FailedPages)
	}

	if run.Interrupted {
		sb.WriteString("Status:          INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:          Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, run *model.RunResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "  Contacts:  %d\n", len(run.Contacts))
	fmt.Fprintf(sb, "  Excluded:  %d (below %.2f)\n", run.Excluded, run.MinConfidence)
	fmt.Fprintf(sb, "  Total:     %d\n", run.TotalContacts)
	sb.WriteString("\n")

	counts := run.CountByMethod()
	for _, m := range model.Methods {
		if counts[m] == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "  %-20s %d\n", MethodLabel(m)+":", counts[m])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeContacts(sb *strings.Builder, run *model.RunResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CONTACTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(run.Contacts) == 0 {
		sb.WriteString("  No contacts found\n\n")
		return
	}

	for i, c := range run.Contacts {
		fmt.Fprintf(sb, "[%d] %s  (%.2f, %s)\n", i+1, c.Email, c.Confidence, c.Verdict)
		writeField(sb, "Name", c.Name)
		writeField(sb, "Title", c.Title)
		writeField(sb, "Company", c.Company)
		writeField(sb, "Phones", strings.Join(c.Phones, ", "))
		for _, p := range c.Platforms() {
			writeField(sb, PlatformLabel(p), c.Socials[p])
		}
		if c.Disposable {
			writeField(sb, "Note", "disposable mail domain")
		}
		if w.verbose {
			writeField(sb, "Methods", methodLabels(c.Methods))
			for _, u := range c.SourceURLs {
				writeField(sb, "Source", u)
			}
		}
		sb.WriteString("\n")
	}
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "    %-10s %s\n", label+":", value)
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by contactscan\n")
	sb.WriteString("https://github.com/nao1215/contactscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteComparison outputs the comparison in human-readable format.
func (w *SimpleWriter) WriteComparison(c *Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        RUN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Previous: %s  %s  (%d contacts)\n",
		c.Previous.RunID, c.Previous.StartedAt.Format("2006-01-02 15:04"), c.Previous.Contacts)
	fmt.Fprintf(&sb, "Current:  %s  %s  (%d contacts)\n\n",
		c.Current.RunID, c.Current.StartedAt.Format("2006-01-02 15:04"), c.Current.Contacts)

	if !c.HasChanges() {
		fmt.Fprintf(&sb, "No changes (%d contacts unchanged)\n\n", c.Unchanged)
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "Added: %d  Removed: %d  Changed: %d  Unchanged: %d\n\n",
		len(c.Added), len(c.Removed), len(c.Changed), c.Unchanged)

	for _, contact := range c.Added {
		fmt.Fprintf(&sb, "  [+] %s (%.2f)\n", contact.Email, contact.Confidence)
	}
	for _, contact := range c.Removed {
		fmt.Fprintf(&sb, "  [-] %s (%.2f)\n", contact.Email, contact.Confidence)
	}
	for _, change := range c.Changed {
		fmt.Fprintf(&sb, "  [~] %s (%.2f -> %.2f)\n", change.Email, change.Before.Confidence, change.After.Confidence)
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

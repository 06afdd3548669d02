package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/contactscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeSummary(md, run)
	w.writeContacts(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunResult) {
	md.H1("Contact Report")
	md.PlainText("")

	site := run.Site
	if site == "" {
		site = "-"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + run.RunID + "`"},
			{"Site", site},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Processed", strconv.Itoa(run.PagesProcessed)},
			{"Duplicate Pages", strconv.Itoa(run.DuplicatePages)},
			{"Failed Pages", strconv.Itoa(run.FailedPages)},
			{"Status", statusText(run)},
		},
	})
	md.PlainText("")
}

func statusText(run *model.RunResult) string {
	if run.Interrupted {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, run *model.RunResult) {
	md.H2("Summary")
	md.PlainText("")

	counts := run.CountByMethod()
	rows := [][]string{
		{"Contacts", strconv.Itoa(len(run.Contacts))},
		{"Excluded (below " + strconv.FormatFloat(run.MinConfidence, 'f', 2, 64) + ")", strconv.Itoa(run.Excluded)},
	}
	for _, m := range model.Methods {
		if counts[m] > 0 {
			rows = append(rows, []string{MethodLabel(m), strconv.Itoa(counts[m])})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(counts) > 0 {
		w.writePieChart(md, counts)
	}
	w.writeAlert(md, run)
}

// writePieChart writes a mermaid pie chart of contacts per extraction method.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Method]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Contacts by Extraction Method"),
		piechart.WithShowData(true),
	)
	for _, m := range model.Methods {
		if counts[m] > 0 {
			chart.LabelAndIntValue(MethodLabel(m), uint64(counts[m]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.RunResult) {
	switch {
	case run.Interrupted:
		md.Warningf("The run was interrupted after %d page(s). Results are partial.", run.PagesProcessed)
	case run.FailedPages > 0:
		md.Importantf("%d page(s) failed and contributed no contacts.", run.FailedPages)
	case len(run.Contacts) == 0:
		md.Note("No contacts reached the confidence threshold.")
	default:
		md.Tip(fmt.Sprintf("%d contact(s) found.", len(run.Contacts)))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeContacts(md *markdown.Markdown, run *model.RunResult) {
	md.H2("Contacts")
	md.PlainText("")

	if len(run.Contacts) == 0 {
		md.PlainText("No contacts found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Contacts))
	for i, c := range run.Contacts {
		rows[i] = []string{
			c.Email,
			orDash(c.Name),
			orDash(truncateString(c.Title, 40)),
			orDash(truncateString(c.Company, 40)),
			strconv.FormatFloat(c.Confidence, 'f', 2, 64),
			c.Verdict.String(),
			methodLabels(c.Methods),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Email", "Name", "Title", "Company", "Confidence", "Verdict", "Methods"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, c := range run.Contacts {
		if details := contactDetails(c); details != "" {
			md.Details(c.Email, details)
		}
	}
	md.PlainText("")
}

// contactDetails lists phones, profiles and sources of a contact.
func contactDetails(c model.Contact) string {
	var lines []string
	for _, phone := range c.Phones {
		lines = append(lines, "- Phone: "+phone)
	}
	for _, p := range c.Platforms() {
		lines = append(lines, "- "+PlatformLabel(p)+": "+c.Socials[p])
	}
	if c.Disposable {
		lines = append(lines, "- Disposable mail domain")
	}
	for _, u := range c.SourceURLs {
		lines = append(lines, "- Source: "+u)
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [contactscan](https://github.com/nao1215/contactscan)*")
}

// WriteComparison outputs the comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Run ID", "Started", "Contacts"},
		Rows: [][]string{
			{"Previous", "`" + c.Previous.RunID + "`", c.Previous.StartedAt.Format("2006-01-02 15:04"), strconv.Itoa(c.Previous.Contacts)},
			{"Current", "`" + c.Current.RunID + "`", c.Current.StartedAt.Format("2006-01-02 15:04"), strconv.Itoa(c.Current.Contacts)},
		},
	})
	md.PlainText("")

	if !c.HasChanges() {
		md.Note(fmt.Sprintf("No changes. %d contact(s) unchanged.", c.Unchanged))
		return len(md.String()), md.Build()
	}

	if len(c.Added) > 0 {
		md.H2("Added")
		md.PlainText("")
		md.BulletList(contactItems(c.Added)...)
		md.PlainText("")
	}
	if len(c.Removed) > 0 {
		md.H2("Removed")
		md.PlainText("")
		md.BulletList(contactItems(c.Removed)...)
		md.PlainText("")
	}
	if len(c.Changed) > 0 {
		md.H2("Changed")
		md.PlainText("")
		rows := make([][]string, len(c.Changed))
		for i, change := range c.Changed {
			rows[i] = []string{
				change.Email,
				strconv.FormatFloat(change.Before.Confidence, 'f', 2, 64),
				strconv.FormatFloat(change.After.Confidence, 'f', 2, 64),
				change.Before.Verdict.String() + " → " + change.After.Verdict.String(),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Email", "Before", "After", "Verdict"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func contactItems(contacts []model.Contact) []string {
	items := make([]string, len(contacts))
	for i, c := range contacts {
		items[i] = fmt.Sprintf("%s (%.2f)", c.Email, c.Confidence)
	}
	return items
}

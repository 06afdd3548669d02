package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/contactscan/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a finished run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.RunResult) (int, error)

	// WriteComparison outputs the difference between two stored runs.
	WriteComparison(c *Comparison) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.RunResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(c *Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(c)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// platformNames holds labels that title-casing gets wrong.
var platformNames = map[string]string{
	"linkedin": "LinkedIn",
	"github":   "GitHub",
	"youtube":  "YouTube",
	"tiktok":   "TikTok",
	"twitter":  "Twitter/X",
}

// PlatformLabel returns the display name of a social platform.
func PlatformLabel(platform string) string {
	if name, ok := platformNames[strings.ToLower(platform)]; ok {
		return name
	}
	return cases.Title(language.English).String(platform)
}

var methodNames = map[model.Method]string{
	model.MethodJavaScriptRendered: "JavaScript Rendered",
	model.MethodOCR:                "OCR",
}

// MethodLabel returns the display name of an extraction method.
func MethodLabel(m model.Method) string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(m.String(), "_", " "))
}

func methodLabels(methods []model.Method) string {
	labels := make([]string, len(methods))
	for i, m := range methods {
		labels[i] = MethodLabel(m)
	}
	return strings.Join(labels, ", ")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

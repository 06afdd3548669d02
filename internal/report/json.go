package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/contactscan/internal/model"
)

// JSONWriter outputs runs in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run as a JSON document.
func (w *JSONWriter) Write(run *model.RunResult) (int, error) {
	return w.writeJSON(run)
}

// WriteComparison outputs the comparison as a JSON document.
func (w *JSONWriter) WriteComparison(c *Comparison) (int, error) {
	return w.writeJSON(c)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a run with the version of the tool that produced it.
type JSONReport struct {
	// Version is the contactscan version that generated this report.
	Version string `json:"version"`

	// Run is the finished run.
	Run *model.RunResult `json:"run"`

	// MethodCounts counts included contacts per extraction method.
	MethodCounts map[model.Method]int `json:"method_counts"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(run *model.RunResult, version string) *JSONReport {
	return &JSONReport{
		Version:      version,
		Run:          run,
		MethodCounts: run.CountByMethod(),
	}
}

// FullJSONWriter outputs runs wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	// version is the contactscan version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the run wrapped with metadata.
func (w *FullJSONWriter) Write(run *model.RunResult) (int, error) {
	return w.writeJSON(NewJSONReport(run, w.version))
}

// Package report renders finished runs and run comparisons.
//
// Writers exist for three formats:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter and FullJSONWriter: JSON for other tools
//   - MarkdownWriter: Markdown with a mermaid chart of extraction methods
//
// All of them implement Writer and can be combined with MultiWriter.
package report

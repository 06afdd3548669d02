package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/contactscan/internal/htmltext"
	"github.com/nao1215/contactscan/internal/model"
)

// errNoInputs is returned when the given paths hold no supported files.
var errNoInputs = errors.New("no input files found (supported: .html, .htm, .txt, .jsonl)")

// maxLineSize bounds a single line of a .jsonl input.
const maxLineSize = 16 << 20

// input is one file to read pages from.
type input struct {
	// path is the file on disk.
	path string

	// rel is the path relative to the argument it was found under, slash separated.
	rel string
}

func isSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".txt", ".jsonl":
		return true
	default:
		return false
	}
}

// collectInputs expands paths into input files. Directories are walked and
// unsupported files inside them are skipped. A file named directly must be supported.
func collectInputs(paths []string) ([]input, error) {
	var inputs []input
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", root, err)
		}
		if !info.IsDir() {
			if !isSupported(root) {
				return nil, fmt.Errorf("unsupported input file: %s", root)
			}
			inputs = append(inputs, input{path: root, rel: filepath.Base(root)})
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isSupported(path) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			inputs = append(inputs, input{path: path, rel: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	if len(inputs) == 0 {
		return nil, errNoInputs
	}
	return inputs, nil
}

// pageLoader turns input files into pages.
type pageLoader struct {
	// baseURL, when set, replaces file:// URLs: a file at rel gets baseURL/rel.
	baseURL string

	// site is set on every page that does not carry its own SiteURL.
	site string

	logger *slog.Logger
}

func (l *pageLoader) sourceURL(in input) string {
	if l.baseURL != "" {
		return strings.TrimRight(l.baseURL, "/") + "/" + in.rel
	}
	abs, err := filepath.Abs(in.path)
	if err != nil {
		abs = in.path
	}
	return "file://" + filepath.ToSlash(abs)
}

// load reads the pages held by one input file.
func (l *pageLoader) load(in input) ([]model.Page, error) {
	data, err := os.ReadFile(in.path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", in.path, err)
	}

	sourceURL := l.sourceURL(in)
	switch strings.ToLower(filepath.Ext(in.path)) {
	case ".html", ".htm":
		parser, err := htmltext.NewParser(sourceURL)
		if err != nil {
			return nil, err
		}
		doc, err := parser.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", in.path, err)
		}
		return []model.Page{doc.Page(sourceURL, l.site)}, nil

	case ".txt":
		return []model.Page{{
			SourceURL: sourceURL,
			SiteURL:   l.site,
			Text:      string(data),
			Kind:      model.ContentHTMLText,
		}}, nil

	case ".jsonl":
		return l.loadJSONL(in, data)

	default:
		return nil, fmt.Errorf("unsupported input file: %s", in.path)
	}
}

// loadJSONL decodes one page per line. Malformed lines are logged and skipped.
func (l *pageLoader) loadJSONL(in input, data []byte) ([]model.Page, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var pages []model.Page
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var page model.Page
		if err := json.Unmarshal(text, &page); err != nil {
			l.logger.Warn("skipping malformed page", "file", in.path, "line", line, "error", err)
			continue
		}
		if page.SourceURL == "" {
			page.SourceURL = fmt.Sprintf("%s#L%d", l.sourceURL(in), line)
		}
		if page.SiteURL == "" {
			page.SiteURL = l.site
		}
		pages = append(pages, page)
	}
	if err := scanner.Err(); err != nil {
		return pages, fmt.Errorf("failed to read %s: %w", in.path, err)
	}
	return pages, nil
}

// streamPages sends the pages of every input to out and closes it.
// Unreadable inputs are logged and skipped. Sending stops when ctx is done.
func streamPages(ctx context.Context, loader *pageLoader, inputs []input, out chan<- model.Page) {
	defer close(out)

	for _, in := range inputs {
		pages, err := loader.load(in)
		if err != nil {
			loader.logger.Warn("skipping input", "file", in.path, "error", err)
		}
		for _, page := range pages {
			select {
			case out <- page:
			case <-ctx.Done():
				return
			}
		}
	}
}

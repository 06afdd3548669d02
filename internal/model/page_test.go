package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestPageUnmarshalJSON tests decoding pages from the crawler's line format.
func TestPageUnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("all fields", func(t *testing.T) {
		t.Parallel()

		line := `{"source_url":"https://acme.com/team","site_url":"acme.com","raw_text":"Jane","mailto":["jane@acme.com"],"rendered_text":"r","content_kind":"ocr_text","ocr_confidence":0.7}`
		var p Page
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			t.Fatal(err)
		}
		if p.SourceURL != "https://acme.com/team" || p.SiteURL != "acme.com" || p.Text != "Jane" || p.Rendered != "r" {
			t.Errorf("unexpected page: %+v", p)
		}
		if len(p.Mailtos) != 1 || p.Mailtos[0] != "jane@acme.com" {
			t.Errorf("unexpected mailtos: %v", p.Mailtos)
		}
		if p.Kind != ContentOCRText || p.OCRConfidence != 0.7 {
			t.Errorf("unexpected kind %v confidence %v", p.Kind, p.OCRConfidence)
		}
	})

	t.Run("missing kind is html text", func(t *testing.T) {
		t.Parallel()

		var p Page
		if err := json.Unmarshal([]byte(`{"source_url":"https://acme.com","raw_text":"x"}`), &p); err != nil {
			t.Fatal(err)
		}
		if p.Kind != ContentHTMLText {
			t.Errorf("expected html_text, got %v", p.Kind)
		}
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		t.Parallel()

		var p Page
		err := json.Unmarshal([]byte(`{"content_kind":"pdf"}`), &p)
		var enumErr *UnknownEnumError
		if !errors.As(err, &enumErr) {
			t.Fatalf("expected UnknownEnumError, got %v", err)
		}
		if enumErr.Value != "pdf" {
			t.Errorf("unexpected value %q", enumErr.Value)
		}
	})

	t.Run("kind round trips", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Page{SourceURL: "u", Kind: ContentRenderedText})
		if err != nil {
			t.Fatal(err)
		}
		var p Page
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatal(err)
		}
		if p.Kind != ContentRenderedText {
			t.Errorf("got %v", p.Kind)
		}
	})
}

// TestHostOf tests host extraction from URLs and bare hosts.
func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"https://Acme.com:8443/about", "acme.com"},
		{"acme.com/team", "acme.com"},
		{"  ", ""},
		{"file:///tmp/page.html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			if got := HostOf(tt.raw); got != tt.want {
				t.Errorf("HostOf(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

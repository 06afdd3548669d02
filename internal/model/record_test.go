package model

import "testing"

// TestSpanGap tests distance computation between spans.
func TestSpanGap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Span
		want int
	}{
		{"b before a", Span{20, 30}, Span{0, 8}, 12},
		{"b after a", Span{0, 8}, Span{20, 30}, 12},
		{"touching", Span{0, 8}, Span{8, 10}, 0},
		{"overlapping", Span{0, 8}, Span{4, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Gap(tt.b); got != tt.want {
				t.Errorf("Gap() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestSpanValid tests span bounds checking.
func TestSpanValid(t *testing.T) {
	t.Parallel()

	if !(Span{0, 5}).Valid(5) {
		t.Error("expected span within bounds to be valid")
	}
	if (Span{3, 2}).Valid(5) {
		t.Error("expected inverted span to be invalid")
	}
	if (Span{0, 6}).Valid(5) {
		t.Error("expected span past end to be invalid")
	}
	if (Span{-1, 2}).Valid(5) {
		t.Error("expected negative span to be invalid")
	}
}

// TestAttributeCloser tests the closest-wins rule with its tie-break.
func TestAttributeCloser(t *testing.T) {
	t.Parallel()

	near := Attribute{Value: "Zed", Distance: 5}
	far := Attribute{Value: "Amy", Distance: 9}
	tie := Attribute{Value: "Amy", Distance: 5}

	if !near.Closer(far) {
		t.Error("smaller distance should win")
	}
	if far.Closer(near) {
		t.Error("larger distance should lose")
	}
	if !tie.Closer(near) {
		t.Error("equal distance should fall back to smaller value")
	}
	if near.Closer(tie) {
		t.Error("tie-break must be antisymmetric")
	}
	if (Attribute{}).Closer(far) {
		t.Error("empty attribute should never win")
	}
	if !far.Closer(Attribute{}) {
		t.Error("any value should beat an empty attribute")
	}
}

// TestNormalizeEmail tests the run-level address key.
func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail(" John@Example.COM "); got != "john@example.com" {
		t.Errorf("got %q", got)
	}
}

// TestPageHost tests host extraction from page URLs.
func TestPageHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page Page
		want string
	}{
		{"source url", Page{SourceURL: "https://WWW.Example.com/about"}, "www.example.com"},
		{"site overrides source", Page{SourceURL: "https://cdn.other.net/x", SiteURL: "example.com"}, "example.com"},
		{"file url has no host", Page{SourceURL: "file:///tmp/page.html"}, ""},
		{"empty", Page{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.page.Host(); got != tt.want {
				t.Errorf("Host() = %q, want %q", got, tt.want)
			}
		})
	}
}

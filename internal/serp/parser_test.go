package serp

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const primaryMarkup = `
<html><body>
<div id="search">
  <div class="g">
    <a href="https://example.com/coffee"><h3>Best Coffee Beans</h3></a>
    <div class="VwiC3b">A guide to coffee beans.</div>
  </div>
  <div class="g">
    <a href="https://www.google.com/preferences">Settings</a>
    <a href="https://brew.example.org/"><h3>Brewing at home</h3></a>
  </div>
  <div class="g">
    <a href="/relative/nowhere"><h3>No outbound link</h3></a>
  </div>
</div>
</body></html>`

const fallbackMarkup = `
<html><body>
<div class="Gx5Zad xpd">
  <a href="/url?q=https://example.com/coffee&amp;sa=U">
    <div class="BNeawe vvjwJb">Best Coffee Beans</div>
  </a>
  <div class="BNeawe s3v9rd">A guide to coffee beans.</div>
</div>
<div class="Gx5Zad xpd">
  <a href="/url?q=https://roast.example.net/guide&amp;sa=U">
    <div class="BNeawe vvjwJb">Roasting Guide</div>
  </a>
</div>
</body></html>`

func TestParseHTMLPrimary(t *testing.T) {
	results, err := ParseHTML(primaryMarkup)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.Position != 1 || first.Title != "Best Coffee Beans" || first.Link != "https://example.com/coffee" {
		t.Errorf("first result = %+v", first)
	}
	if first.Snippet != "A guide to coffee beans." {
		t.Errorf("snippet = %q", first.Snippet)
	}

	// The google.com anchor in the second card must be skipped in favour of
	// the real outbound link.
	second := results[1]
	if second.Position != 2 || second.Link != "https://brew.example.org/" {
		t.Errorf("second result = %+v", second)
	}
}

func TestParseHTMLFallback(t *testing.T) {
	// The fallback markup must yield nothing through the primary tier and
	// the full set through the fallback tier.
	doc := mustDoc(t, fallbackMarkup)
	if got := extract(doc, primarySelectors); len(got) != 0 {
		t.Fatalf("primary selectors extracted %d results from fallback markup", len(got))
	}

	results, err := ParseHTML(fallbackMarkup)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Best Coffee Beans" || results[0].Link != "https://example.com/coffee" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].Position != 2 || results[1].Link != "https://roast.example.net/guide" {
		t.Errorf("second result = %+v", results[1])
	}
	if results[1].Snippet != "" {
		t.Errorf("missing snippet should be empty, got %q", results[1].Snippet)
	}
}

func TestParseHTMLNoResults(t *testing.T) {
	results, err := ParseHTML("<html><body><p>No results found.</p></body></html>")
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestParseJSON(t *testing.T) {
	payload := `{
		"organic_results": [
			{"position": 3, "title": "Best Coffee Beans", "link": "https://example.com/coffee", "snippet": "A guide."},
			{"title": "Roasting Guide", "link": "https://roast.example.net/guide", "description": "Roast at home."}
		]
	}`

	results, err := ParseJSON(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Provider numbering is preserved when present.
	if results[0].Position != 3 {
		t.Errorf("position = %d, want 3 (provider numbering)", results[0].Position)
	}
	// Missing position falls back to document order.
	if results[1].Position != 2 {
		t.Errorf("position = %d, want 2", results[1].Position)
	}
	// description is accepted as a snippet alias.
	if results[1].Snippet != "Roast at home." {
		t.Errorf("snippet = %q", results[1].Snippet)
	}
}

func TestParseJSONCamelCaseKey(t *testing.T) {
	payload := `{"organicResults": [{"position": 1, "title": "T", "link": "https://example.com"}]}`
	results, err := ParseJSON(json.RawMessage(payload))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(results) != 1 || results[0].Link != "https://example.com" {
		t.Errorf("results = %+v", results)
	}
}

func TestParseJSONUnparseable(t *testing.T) {
	_, err := ParseJSON(json.RawMessage(`{"organic_results": not json`))
	if !errors.Is(err, ErrUnparseable) {
		t.Errorf("error = %v, want ErrUnparseable", err)
	}
}

func TestParseJSONMissingFields(t *testing.T) {
	// An empty object is odd but readable: zero results, no error.
	results, err := ParseJSON(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		href     string
		expected string
	}{
		{"/url?q=https://example.com/page&sa=U", "https://example.com/page"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"/url?sa=U", "/url?sa=U"},
		{"/search?q=coffee", "/search?q=coffee"},
	}
	for _, tt := range tests {
		if got := unwrapRedirect(tt.href); got != tt.expected {
			t.Errorf("unwrapRedirect(%q) = %q, want %q", tt.href, got, tt.expected)
		}
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture HTML: %v", err)
	}
	return doc
}

// Package serp extracts ordered organic results from provider responses.
// Providers return either structured JSON or a raw HTML results page; the
// HTML path is coupled to the search engine's current markup and carries a
// fallback selector tier for the alternate layout. Markup drift breaking the
// selectors is an expected operational failure mode here, not a logic bug.
package serp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"serptrack/internal/hostmatch"
)

// ErrUnparseable means the top-level payload could not be read at all.
// Missing or odd fields inside an otherwise readable payload never produce
// this; they degrade to fewer (or zero) results.
var ErrUnparseable = errors.New("unparseable search response")

// OrganicResult is one non-paid search result entry.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet,omitempty"`
}

// selectorSet is one tier of CSS selectors for a result-page layout.
type selectorSet struct {
	container string
	title     string
	snippet   string
}

var (
	// primarySelectors target the dominant desktop result-card markup.
	primarySelectors = selectorSet{
		container: "div.g",
		title:     "h3",
		snippet:   "div.VwiC3b, span.aCOpRe",
	}
	// fallbackSelectors target the lightweight/alternate markup variant
	// served to some clients.
	fallbackSelectors = selectorSet{
		container: "div.Gx5Zad",
		title:     "div.BNeawe.vvjwJb, h3",
		snippet:   "div.BNeawe.s3v9rd",
	}
)

// searchEngineHosts are domains whose links are navigation back into the
// engine itself, never organic destinations.
var searchEngineHosts = []string{
	"google.com",
	"googleusercontent.com",
	"googleadservices.com",
}

type structuredResult struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

type structuredPayload struct {
	OrganicResults    []structuredResult `json:"organic_results"`
	OrganicResultsAlt []structuredResult `json:"organicResults"`
}

// ParseJSON maps a structured payload carrying an organic_results (or
// organicResults) array. The provider's own position numbering is preserved;
// entries without one get their document-order index.
func ParseJSON(raw json.RawMessage) ([]OrganicResult, error) {
	var payload structuredPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	items := payload.OrganicResults
	if len(items) == 0 {
		items = payload.OrganicResultsAlt
	}

	results := make([]OrganicResult, 0, len(items))
	for i, item := range items {
		position := item.Position
		if position == 0 {
			position = i + 1
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = item.Description
		}
		results = append(results, OrganicResult{
			Position: position,
			Title:    strings.TrimSpace(item.Title),
			Link:     strings.TrimSpace(item.Link),
			Snippet:  strings.TrimSpace(snippet),
		})
	}
	return results, nil
}

// ParseHTML extracts organic results from a raw results page. The primary
// selector tier is tried first; when it yields nothing the fallback tier for
// the alternate markup is applied. Positions are assigned sequentially in
// document order starting at 1.
func ParseHTML(html string) ([]OrganicResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	results := extract(doc, primarySelectors)
	if len(results) == 0 {
		results = extract(doc, fallbackSelectors)
	}
	return results, nil
}

func extract(doc *goquery.Document, sel selectorSet) []OrganicResult {
	var results []OrganicResult

	doc.Find(sel.container).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(sel.title).First().Text())
		link := firstOutboundLink(card)
		if title == "" || link == "" {
			return
		}
		results = append(results, OrganicResult{
			Position: len(results) + 1,
			Title:    title,
			Link:     link,
			Snippet:  strings.TrimSpace(card.Find(sel.snippet).First().Text()),
		})
	})
	return results
}

// firstOutboundLink returns the first anchor in the card that points away
// from the search engine. Redirect-style "/url?q=" hrefs are unwrapped.
func firstOutboundLink(card *goquery.Selection) string {
	var link string
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = unwrapRedirect(href)
		if !strings.HasPrefix(href, "http") || isSearchEngineLink(href) {
			return true
		}
		link = href
		return false
	})
	return link
}

// unwrapRedirect recovers the destination from a "/url?q=<target>" href.
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if q := u.Query().Get("q"); q != "" {
		return q
	}
	return href
}

func isSearchEngineLink(href string) bool {
	for _, host := range searchEngineHosts {
		if hostmatch.Match(href, host) {
			return true
		}
	}
	return false
}

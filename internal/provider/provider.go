// Package provider holds the ranking-provider strategy interface and the
// concrete adapters for the supported search backends.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"serptrack/internal/hostmatch"
	"serptrack/internal/serp"
)

// resultCount is how many organic results every adapter requests upstream.
// It defines the "top 100" window a nil position refers to.
const resultCount = 100

var (
	// ErrNotConfigured means the provider cannot run at all: unknown
	// provider id or missing API key. Surfaced to users as an actionable
	// configuration problem, never coerced into "not found".
	ErrNotConfigured = errors.New("ranking provider not configured")

	// ErrUpstream marks transport or API failures from the search backend.
	// Callers must treat it as "check failed", distinct from a legitimate
	// "checked, absent" result.
	ErrUpstream = errors.New("upstream search provider error")
)

// CheckRequest identifies one observation to check.
type CheckRequest struct {
	Keyword  string
	Domain   string
	Location string
	Device   string
}

// RankingResult is the outcome of a single successful check. Position is
// 1-based; nil means the domain was absent from the requested window.
type RankingResult struct {
	Position     *int   `json:"position"`
	SearchVolume *int   `json:"search_volume"`
	Found        bool   `json:"found"`
	Domain       string `json:"domain"`
}

// RankingProvider is the contract every search backend adapter implements.
// All implementations must behave identically from the caller's point of
// view; which adapter serves a request is a runtime configuration detail.
type RankingProvider interface {
	Name() string

	// CheckRanking queries the backend for one keyword and locates the
	// target domain among up to 100 organic results. A non-2xx response or
	// an explicit error field in the payload is an error.
	CheckRanking(ctx context.Context, req CheckRequest) (*RankingResult, error)

	// BatchCheckRanking processes requests strictly sequentially with a
	// provider-specific inter-request delay. It is the bare batch variant:
	// it stops at the first failing request and returns the results
	// gathered so far together with that error. Callers that need
	// per-batch failure isolation (the scheduler) must handle this
	// themselves.
	BatchCheckRanking(ctx context.Context, reqs []CheckRequest) ([]*RankingResult, error)

	// GetOrganicResults returns the full organic result list for a keyword,
	// for SERP previews and matched-URL recovery.
	GetOrganicResults(ctx context.Context, req CheckRequest) ([]serp.OrganicResult, error)
}

// SettingsStore supplies runtime configuration: the active provider id and
// per-provider API keys. Reads go to storage on every call so an admin can
// rewire providers without a restart.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Registry holds the registered adapters keyed by provider id.
type Registry struct {
	providers map[string]RankingProvider
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(providers ...RankingProvider) *Registry {
	r := &Registry{providers: make(map[string]RankingProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the adapter for the given provider id.
func (r *Registry) Get(name string) (RankingProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown ranking provider %q: %w", name, ErrNotConfigured)
	}
	return p, nil
}

// Has reports whether a provider id is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Names lists the registered provider ids.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// FindDomainPosition scans ordered organic results for the first entry whose
// hostname matches the target domain and returns its position and link.
func FindDomainPosition(results []serp.OrganicResult, domain string) (*int, string, bool) {
	for _, result := range results {
		if hostmatch.Match(result.Link, domain) {
			position := result.Position
			return &position, result.Link, true
		}
	}
	return nil, "", false
}

// countryCode maps an ISO-ish location code ("us", "gb-en") to the country
// parameter providers expect.
func countryCode(location string) string {
	code := strings.ToLower(strings.TrimSpace(location))
	if i := strings.IndexByte(code, '-'); i >= 0 {
		code = code[:i]
	}
	if code == "" {
		return "us"
	}
	return code
}

// rankingFromResults assembles the common RankingResult an adapter returns
// once it has the parsed organic set.
func rankingFromResults(results []serp.OrganicResult, domain string, searchVolume *int) *RankingResult {
	position, _, found := FindDomainPosition(results, domain)
	return &RankingResult{
		Position:     position,
		SearchVolume: searchVolume,
		Found:        found,
		Domain:       hostmatch.Normalize(domain),
	}
}

// batchCheck is the shared sequential batch loop; see the interface contract
// for its first-error semantics.
func batchCheck(ctx context.Context, p RankingProvider, reqs []CheckRequest, delay time.Duration, sleep func(time.Duration)) ([]*RankingResult, error) {
	results := make([]*RankingResult, 0, len(reqs))
	for i, req := range reqs {
		if i > 0 {
			sleep(delay)
		}
		res, err := p.CheckRanking(ctx, req)
		if err != nil {
			return results, fmt.Errorf("batch request %d (%q): %w", i+1, req.Keyword, err)
		}
		results = append(results, res)
	}
	return results, nil
}

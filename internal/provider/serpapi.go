package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"serptrack/internal/serp"
)

const (
	serpAPIName       = "serpapi"
	serpAPIKeySetting = "serpapi_api_key"

	defaultSerpAPIBaseURL = "https://serpapi.com/search.json"

	// serpAPIBatchDelay spaces sequential batch requests to stay under the
	// provider's throughput limits.
	serpAPIBatchDelay = 500 * time.Millisecond
)

// SerpAPI queries a structured-JSON search API: results always arrive as an
// organic_results array plus a total-results count.
type SerpAPI struct {
	settings SettingsStore
	client   *http.Client
	baseURL  string
	sleep    func(time.Duration)
}

// NewSerpAPI creates the adapter. The timeout bounds every upstream call; an
// unattended scheduler must never hang on a stalled socket.
func NewSerpAPI(settings SettingsStore, timeout time.Duration) *SerpAPI {
	return &SerpAPI{
		settings: settings,
		client:   &http.Client{Timeout: timeout},
		baseURL:  defaultSerpAPIBaseURL,
		sleep:    time.Sleep,
	}
}

// Name returns the provider id used in settings.
func (p *SerpAPI) Name() string {
	return serpAPIName
}

// CheckRanking implements RankingProvider.
func (p *SerpAPI) CheckRanking(ctx context.Context, req CheckRequest) (*RankingResult, error) {
	results, searchVolume, err := p.search(ctx, req)
	if err != nil {
		return nil, err
	}
	return rankingFromResults(results, req.Domain, searchVolume), nil
}

// BatchCheckRanking implements RankingProvider; see the interface contract
// for the bare first-error semantics.
func (p *SerpAPI) BatchCheckRanking(ctx context.Context, reqs []CheckRequest) ([]*RankingResult, error) {
	return batchCheck(ctx, p, reqs, serpAPIBatchDelay, p.sleep)
}

// GetOrganicResults implements RankingProvider.
func (p *SerpAPI) GetOrganicResults(ctx context.Context, req CheckRequest) ([]serp.OrganicResult, error) {
	results, _, err := p.search(ctx, req)
	return results, err
}

type serpAPIEnvelope struct {
	Error             string `json:"error"`
	SearchInformation struct {
		TotalResults int64 `json:"total_results"`
	} `json:"search_information"`
}

func (p *SerpAPI) search(ctx context.Context, req CheckRequest) ([]serp.OrganicResult, *int, error) {
	apiKey, err := p.apiKey(ctx)
	if err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	params.Set("q", req.Keyword)
	params.Set("num", strconv.Itoa(resultCount))
	params.Set("gl", countryCode(req.Location))
	params.Set("hl", "en")
	params.Set("api_key", apiKey)
	if req.Device == "mobile" {
		params.Set("device", "mobile")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("serpapi: build request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("serpapi: %v: %w", err, ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("serpapi: read response: %w", ErrUpstream)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("serpapi: unexpected status %s: %w", resp.Status, ErrUpstream)
	}

	var envelope serpAPIEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("serpapi: malformed response: %w", ErrUpstream)
	}
	if envelope.Error != "" {
		return nil, nil, fmt.Errorf("serpapi: %s: %w", envelope.Error, ErrUpstream)
	}

	results, err := serp.ParseJSON(body)
	if err != nil {
		return nil, nil, fmt.Errorf("serpapi: %v: %w", err, ErrUpstream)
	}

	var searchVolume *int
	if envelope.SearchInformation.TotalResults > 0 {
		v := int(envelope.SearchInformation.TotalResults)
		searchVolume = &v
	}
	return results, searchVolume, nil
}

func (p *SerpAPI) apiKey(ctx context.Context) (string, error) {
	key, err := p.settings.GetSetting(ctx, serpAPIKeySetting)
	if err != nil || key == "" {
		return "", fmt.Errorf("serpapi api key missing: %w", ErrNotConfigured)
	}
	return key, nil
}

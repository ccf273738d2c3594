package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"serptrack/internal/serp"
)

const (
	scrapingRobotName       = "scrapingrobot"
	scrapingRobotKeySetting = "scrapingrobot_api_key"

	defaultScrapingRobotBaseURL = "https://api.scrapingrobot.com"

	scrapingRobotBatchDelay = time.Second
)

// ScrapingRobot drives a scraping backend whose responses are heterogeneous:
// the `result` field may hold a structured object with an organicResults
// array, or a raw HTML document that goes through the selector-based parser.
type ScrapingRobot struct {
	settings SettingsStore
	client   *http.Client
	baseURL  string
	sleep    func(time.Duration)
}

// NewScrapingRobot creates the adapter with an explicit upstream timeout.
func NewScrapingRobot(settings SettingsStore, timeout time.Duration) *ScrapingRobot {
	return &ScrapingRobot{
		settings: settings,
		client:   &http.Client{Timeout: timeout},
		baseURL:  defaultScrapingRobotBaseURL,
		sleep:    time.Sleep,
	}
}

// Name returns the provider id used in settings.
func (p *ScrapingRobot) Name() string {
	return scrapingRobotName
}

// CheckRanking implements RankingProvider.
func (p *ScrapingRobot) CheckRanking(ctx context.Context, req CheckRequest) (*RankingResult, error) {
	results, err := p.search(ctx, req)
	if err != nil {
		return nil, err
	}
	// This backend carries no volume data.
	return rankingFromResults(results, req.Domain, nil), nil
}

// BatchCheckRanking implements RankingProvider; see the interface contract
// for the bare first-error semantics.
func (p *ScrapingRobot) BatchCheckRanking(ctx context.Context, reqs []CheckRequest) ([]*RankingResult, error) {
	return batchCheck(ctx, p, reqs, scrapingRobotBatchDelay, p.sleep)
}

// GetOrganicResults implements RankingProvider.
func (p *ScrapingRobot) GetOrganicResults(ctx context.Context, req CheckRequest) ([]serp.OrganicResult, error) {
	return p.search(ctx, req)
}

type scrapingRobotRequest struct {
	Module string              `json:"module"`
	Params scrapingRobotParams `json:"params"`
}

type scrapingRobotParams struct {
	Query   string `json:"query"`
	Country string `json:"country"`
	Lang    string `json:"lang"`
	Num     int    `json:"num"`
	Mobile  bool   `json:"mobile,omitempty"`
}

type scrapingRobotEnvelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (p *ScrapingRobot) search(ctx context.Context, req CheckRequest) ([]serp.OrganicResult, error) {
	apiKey, err := p.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(scrapingRobotRequest{
		Module: "GoogleScraper",
		Params: scrapingRobotParams{
			Query:   req.Keyword,
			Country: countryCode(req.Location),
			Lang:    "en",
			Num:     resultCount,
			Mobile:  req.Device == "mobile",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scrapingrobot: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?token="+apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("scrapingrobot: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scrapingrobot: %v: %w", err, ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrapingrobot: read response: %w", ErrUpstream)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrapingrobot: unexpected status %s: %w", resp.Status, ErrUpstream)
	}

	var envelope scrapingRobotEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("scrapingrobot: malformed response: %w", ErrUpstream)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("scrapingrobot: %s: %w", envelope.Error, ErrUpstream)
	}
	if envelope.Status != "" && envelope.Status != "SUCCESS" {
		return nil, fmt.Errorf("scrapingrobot: status %s: %w", envelope.Status, ErrUpstream)
	}

	return parseRobotResult(envelope.Result)
}

// parseRobotResult dispatches on the shape of the result field: a JSON
// string is a raw HTML document, an object is a structured result set.
func parseRobotResult(result json.RawMessage) ([]serp.OrganicResult, error) {
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("scrapingrobot: empty result payload: %w", ErrUpstream)
	}

	if trimmed[0] == '"' {
		var html string
		if err := json.Unmarshal(trimmed, &html); err != nil {
			return nil, fmt.Errorf("scrapingrobot: malformed html result: %w", ErrUpstream)
		}
		results, err := serp.ParseHTML(html)
		if err != nil {
			return nil, fmt.Errorf("scrapingrobot: %v: %w", err, ErrUpstream)
		}
		return results, nil
	}

	results, err := serp.ParseJSON(trimmed)
	if err != nil {
		return nil, fmt.Errorf("scrapingrobot: %v: %w", err, ErrUpstream)
	}
	return results, nil
}

func (p *ScrapingRobot) apiKey(ctx context.Context) (string, error) {
	key, err := p.settings.GetSetting(ctx, scrapingRobotKeySetting)
	if err != nil || key == "" {
		return "", fmt.Errorf("scrapingrobot api key missing: %w", ErrNotConfigured)
	}
	return key, nil
}

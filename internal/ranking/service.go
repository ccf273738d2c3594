// Package ranking is the orchestrator between HTTP handlers, the scheduler,
// and the provider adapters. It owns the persistence step of a check: read
// the previous latest ranking, append the new history row, diff the two, and
// write at most one notification.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"serptrack/internal/db"
	"serptrack/internal/metrics"
	"serptrack/internal/models"
	"serptrack/internal/notify"
	"serptrack/internal/provider"
	"serptrack/internal/serp"
)

// ActiveProviderSetting is the settings key naming the provider adapter all
// operations dispatch to. It is re-read before every operation so an admin
// can switch providers without restarting the process.
const ActiveProviderSetting = "ranking_provider"

// DefaultProvider is used until an admin configures one explicitly.
const DefaultProvider = "serpapi"

// RankingStore persists the append-only check history.
type RankingStore interface {
	CreateRanking(ctx context.Context, keywordID uuid.UUID, position *int) (*models.Ranking, error)
	GetLatestRanking(ctx context.Context, keywordID uuid.UUID) (*models.Ranking, error)
}

// NotificationStore receives the diff engine's events.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// Service dispatches checks to the currently configured provider adapter.
type Service struct {
	registry      *provider.Registry
	settings      provider.SettingsStore
	rankings      RankingStore
	notifications NotificationStore
	log           *slog.Logger
}

// NewService wires the orchestrator.
func NewService(registry *provider.Registry, settings provider.SettingsStore, rankings RankingStore, notifications NotificationStore, log *slog.Logger) *Service {
	return &Service{
		registry:      registry,
		settings:      settings,
		rankings:      rankings,
		notifications: notifications,
		log:           log,
	}
}

// ActiveProvider resolves the configured adapter. Every operation calls this
// fresh; the selection is deliberately late-bound.
func (s *Service) ActiveProvider(ctx context.Context) (provider.RankingProvider, error) {
	name, err := s.settings.GetSetting(ctx, ActiveProviderSetting)
	if err != nil || name == "" {
		name = DefaultProvider
	}
	return s.registry.Get(name)
}

// CheckKeyword runs one check for a tracked keyword and persists its
// artifacts. A provider failure propagates without writing anything: a
// failed check is not a "not found" result.
func (s *Service) CheckKeyword(ctx context.Context, pair models.KeywordWithDomain) (*models.Ranking, error) {
	p, err := s.ActiveProvider(ctx)
	if err != nil {
		return nil, err
	}

	result, err := p.CheckRanking(ctx, requestFor(pair))
	if err != nil {
		metrics.RecordCheck(p.Name(), metrics.OutcomeError)
		return nil, err
	}

	return s.record(ctx, pair, result, p.Name())
}

// CheckKeywordBatch is the scheduler's entry point for one batch. It runs
// the adapter's bare sequential batch, persists every result that came back
// (the successful prefix when the batch died midway), and returns the batch
// error for the scheduler to log. Persistence failures for individual
// keywords are logged and skipped so one bad row cannot poison the batch.
func (s *Service) CheckKeywordBatch(ctx context.Context, pairs []models.KeywordWithDomain) error {
	p, err := s.ActiveProvider(ctx)
	if err != nil {
		return err
	}

	reqs := make([]provider.CheckRequest, len(pairs))
	for i, pair := range pairs {
		reqs[i] = requestFor(pair)
	}

	results, batchErr := p.BatchCheckRanking(ctx, reqs)
	for i, result := range results {
		if _, err := s.record(ctx, pairs[i], result, p.Name()); err != nil {
			s.log.Error("failed to persist check result",
				"keyword", pairs[i].Keyword.Text, "error", err)
		}
	}
	if batchErr != nil {
		metrics.RecordCheck(p.Name(), metrics.OutcomeError)
		return fmt.Errorf("batch check: %w", batchErr)
	}
	return nil
}

// SearchResults fetches the full organic result list for a tracked keyword.
func (s *Service) SearchResults(ctx context.Context, pair models.KeywordWithDomain) ([]serp.OrganicResult, error) {
	p, err := s.ActiveProvider(ctx)
	if err != nil {
		return nil, err
	}
	return p.GetOrganicResults(ctx, requestFor(pair))
}

// InstantLookupRequest is a throwaway keyword-like value for the anonymous
// lookup endpoint; nothing about it is persisted.
type InstantLookupRequest struct {
	Keyword  string `json:"keyword"`
	Domain   string `json:"domain"`
	Location string `json:"location"`
	Device   string `json:"device"`
}

// InstantLookupResult is the ephemeral outcome returned to the caller.
type InstantLookupResult struct {
	Keyword      string `json:"keyword"`
	Domain       string `json:"domain"`
	Found        bool   `json:"found"`
	Position     *int   `json:"position"`
	SearchVolume *int   `json:"search_volume"`
	MatchedURL   string `json:"matched_url,omitempty"`
}

// InstantLookup performs a single non-persisted check. When the domain is
// found, a second provider call fetches the full organic results solely to
// recover the matched URL; the position alone does not carry it. That extra
// round trip is part of the contract and is never skipped on found=true.
func (s *Service) InstantLookup(ctx context.Context, req InstantLookupRequest) (*InstantLookupResult, error) {
	p, err := s.ActiveProvider(ctx)
	if err != nil {
		return nil, err
	}

	checkReq := provider.CheckRequest{
		Keyword:  req.Keyword,
		Domain:   req.Domain,
		Location: req.Location,
		Device:   req.Device,
	}
	result, err := p.CheckRanking(ctx, checkReq)
	if err != nil {
		return nil, err
	}

	out := &InstantLookupResult{
		Keyword:      req.Keyword,
		Domain:       result.Domain,
		Found:        result.Found,
		Position:     result.Position,
		SearchVolume: result.SearchVolume,
	}
	if result.Found {
		organic, err := p.GetOrganicResults(ctx, checkReq)
		if err != nil {
			return nil, err
		}
		if _, link, ok := provider.FindDomainPosition(organic, req.Domain); ok {
			out.MatchedURL = link
		}
	}
	return out, nil
}

// record persists one check execution: previous-latest read, history append,
// diff, at most one notification. The previous-latest read happens before
// the append for the same keyword, or the diff would compare the new row
// against itself.
func (s *Service) record(ctx context.Context, pair models.KeywordWithDomain, result *provider.RankingResult, providerName string) (*models.Ranking, error) {
	kw := pair.Keyword

	var previousPosition *int
	previous, err := s.rankings.GetLatestRanking(ctx, kw.ID)
	switch {
	case err == nil:
		previousPosition = previous.Position
	case errors.Is(err, db.ErrRankingNotFound):
		// first check for this keyword
	default:
		return nil, fmt.Errorf("read previous ranking: %w", err)
	}

	ranking, err := s.rankings.CreateRanking(ctx, kw.ID, result.Position)
	if err != nil {
		return nil, fmt.Errorf("append ranking: %w", err)
	}
	metrics.RecordCheck(providerName, outcomeFor(result))

	if event := notify.Diff(previousPosition, result.Position, kw.Text); event != nil {
		n := &models.Notification{
			UserID:      kw.UserID,
			KeywordID:   kw.ID,
			Type:        event.Type,
			Title:       event.Title,
			Message:     event.Message,
			OldPosition: event.OldPosition,
			NewPosition: event.NewPosition,
		}
		if err := s.notifications.CreateNotification(ctx, n); err != nil {
			// The history row is already in; losing one notification is
			// preferable to failing the whole check.
			s.log.Error("failed to create notification",
				"keyword", kw.Text, "type", event.Type, "error", err)
		}
	}

	return ranking, nil
}

func requestFor(pair models.KeywordWithDomain) provider.CheckRequest {
	return provider.CheckRequest{
		Keyword:  pair.Keyword.Text,
		Domain:   pair.Domain.URL,
		Location: pair.Keyword.Location,
		Device:   pair.Keyword.Device,
	}
}

func outcomeFor(result *provider.RankingResult) string {
	if result.Found {
		return metrics.OutcomeFound
	}
	return metrics.OutcomeNotFound
}

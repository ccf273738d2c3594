package ranking

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"serptrack/internal/db"
	"serptrack/internal/models"
	"serptrack/internal/provider"
	"serptrack/internal/serp"
)

// fakeProvider is a scriptable RankingProvider.
type fakeProvider struct {
	name         string
	result       *provider.RankingResult
	checkErr     error
	organic      []serp.OrganicResult
	organicErr   error
	checkCalls   int
	organicCalls int
	lastRequest  provider.CheckRequest
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) CheckRanking(_ context.Context, req provider.CheckRequest) (*provider.RankingResult, error) {
	f.checkCalls++
	f.lastRequest = req
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.result, nil
}

func (f *fakeProvider) BatchCheckRanking(ctx context.Context, reqs []provider.CheckRequest) ([]*provider.RankingResult, error) {
	var results []*provider.RankingResult
	for _, req := range reqs {
		res, err := f.CheckRanking(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (f *fakeProvider) GetOrganicResults(context.Context, provider.CheckRequest) ([]serp.OrganicResult, error) {
	f.organicCalls++
	return f.organic, f.organicErr
}

// fakeRankingStore records call order so tests can assert the previous-latest
// read happens before the append.
type fakeRankingStore struct {
	latest  map[uuid.UUID]*models.Ranking
	created []*models.Ranking
	calls   []string
}

func newFakeRankingStore() *fakeRankingStore {
	return &fakeRankingStore{latest: make(map[uuid.UUID]*models.Ranking)}
}

func (s *fakeRankingStore) CreateRanking(_ context.Context, keywordID uuid.UUID, position *int) (*models.Ranking, error) {
	s.calls = append(s.calls, "create")
	r := &models.Ranking{ID: uuid.New(), KeywordID: keywordID, Position: position, CheckedAt: time.Now()}
	s.created = append(s.created, r)
	s.latest[keywordID] = r
	return r, nil
}

func (s *fakeRankingStore) GetLatestRanking(_ context.Context, keywordID uuid.UUID) (*models.Ranking, error) {
	s.calls = append(s.calls, "latest")
	r, ok := s.latest[keywordID]
	if !ok {
		return nil, db.ErrRankingNotFound
	}
	return r, nil
}

type fakeNotificationStore struct {
	created []*models.Notification
	err     error
}

func (s *fakeNotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, n)
	return nil
}

type fakeSettings map[string]string

func (s fakeSettings) GetSetting(_ context.Context, key string) (string, error) {
	v, ok := s[key]
	if !ok {
		return "", db.ErrSettingNotFound
	}
	return v, nil
}

func pos(v int) *int { return &v }

func testPair() models.KeywordWithDomain {
	userID := uuid.New()
	return models.KeywordWithDomain{
		Keyword: models.Keyword{
			ID:       uuid.New(),
			UserID:   userID,
			Text:     "best coffee",
			Location: "us",
			Device:   models.DeviceDesktop,
			IsActive: true,
		},
		Domain: models.Domain{
			ID:       uuid.New(),
			UserID:   userID,
			URL:      "https://example.com",
			IsActive: true,
		},
	}
}

func newTestService(p *fakeProvider, settings fakeSettings) (*Service, *fakeRankingStore, *fakeNotificationStore) {
	rankings := newFakeRankingStore()
	notifications := &fakeNotificationStore{}
	registry := provider.NewRegistry(p)
	svc := NewService(registry, settings, rankings, notifications, slog.Default())
	return svc, rankings, notifications
}

func TestCheckKeywordFirstCheckFound(t *testing.T) {
	p := &fakeProvider{name: "serpapi", result: &provider.RankingResult{Position: pos(5), Found: true, Domain: "example.com"}}
	svc, rankings, notifications := newTestService(p, fakeSettings{ActiveProviderSetting: "serpapi"})

	pair := testPair()
	ranking, err := svc.CheckKeyword(context.Background(), pair)
	if err != nil {
		t.Fatalf("CheckKeyword() error = %v", err)
	}

	if ranking.Position == nil || *ranking.Position != 5 {
		t.Errorf("ranking position = %v, want 5", ranking.Position)
	}
	if p.lastRequest.Keyword != "best coffee" || p.lastRequest.Domain != "https://example.com" {
		t.Errorf("provider request = %+v", p.lastRequest)
	}

	// nil -> 5 is a position_found transition with exactly one notification.
	if len(notifications.created) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications.created))
	}
	n := notifications.created[0]
	if n.Type != models.NotificationPositionFound {
		t.Errorf("type = %s, want position_found", n.Type)
	}
	if n.OldPosition != nil || n.NewPosition == nil || *n.NewPosition != 5 {
		t.Errorf("notification positions = (%v, %v)", n.OldPosition, n.NewPosition)
	}
	if n.UserID != pair.Keyword.UserID || n.KeywordID != pair.Keyword.ID {
		t.Error("notification references the wrong user or keyword")
	}
	if n.IsRead {
		t.Error("new notification must be unread")
	}

	// The previous-latest read must precede the append.
	if len(rankings.calls) != 2 || rankings.calls[0] != "latest" || rankings.calls[1] != "create" {
		t.Errorf("store call order = %v, want [latest create]", rankings.calls)
	}
}

func TestCheckKeywordNotFoundIsPersisted(t *testing.T) {
	p := &fakeProvider{name: "serpapi", result: &provider.RankingResult{Found: false, Domain: "example.com"}}
	svc, rankings, notifications := newTestService(p, fakeSettings{})

	ranking, err := svc.CheckKeyword(context.Background(), testPair())
	if err != nil {
		t.Fatalf("CheckKeyword() error = %v", err)
	}
	if ranking.Position != nil {
		t.Errorf("position = %v, want nil (not found is a persisted fact)", ranking.Position)
	}
	if len(rankings.created) != 1 {
		t.Fatalf("got %d history rows, want 1", len(rankings.created))
	}
	// nil -> nil produces no event.
	if len(notifications.created) != 0 {
		t.Errorf("got %d notifications, want 0", len(notifications.created))
	}
}

func TestCheckKeywordFailureWritesNothing(t *testing.T) {
	p := &fakeProvider{name: "serpapi", checkErr: provider.ErrUpstream}
	svc, rankings, notifications := newTestService(p, fakeSettings{})

	_, err := svc.CheckKeyword(context.Background(), testPair())
	if !errors.Is(err, provider.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	// A failed check is not a "not found": no row, no notification.
	if len(rankings.created) != 0 || len(notifications.created) != 0 {
		t.Errorf("failed check persisted %d rows, %d notifications",
			len(rankings.created), len(notifications.created))
	}
}

func TestCheckKeywordDiffTransitions(t *testing.T) {
	p := &fakeProvider{name: "serpapi"}
	svc, _, notifications := newTestService(p, fakeSettings{})
	pair := testPair()
	ctx := context.Background()

	steps := []struct {
		result   *provider.RankingResult
		wantType string // "" means no new notification
	}{
		{&provider.RankingResult{Position: pos(8), Found: true}, models.NotificationPositionFound},
		{&provider.RankingResult{Position: pos(8), Found: true}, ""},
		{&provider.RankingResult{Position: pos(3), Found: true}, models.NotificationPositionImproved},
		{&provider.RankingResult{Position: pos(9), Found: true}, models.NotificationPositionDeclined},
		{&provider.RankingResult{Found: false}, models.NotificationPositionLost},
	}

	for i, step := range steps {
		before := len(notifications.created)
		p.result = step.result
		if _, err := svc.CheckKeyword(ctx, pair); err != nil {
			t.Fatalf("step %d: CheckKeyword() error = %v", i, err)
		}
		got := notifications.created[before:]
		if step.wantType == "" {
			if len(got) != 0 {
				t.Errorf("step %d: unexpected notification %+v", i, got[0])
			}
			continue
		}
		if len(got) != 1 {
			t.Fatalf("step %d: got %d notifications, want 1", i, len(got))
		}
		if got[0].Type != step.wantType {
			t.Errorf("step %d: type = %s, want %s", i, got[0].Type, step.wantType)
		}
	}
}

func TestCheckKeywordBatchPersistsPrefixOnFailure(t *testing.T) {
	calls := 0
	p := &scriptedProvider{name: "serpapi", check: func(req provider.CheckRequest) (*provider.RankingResult, error) {
		calls++
		if calls == 2 {
			return nil, provider.ErrUpstream
		}
		return &provider.RankingResult{Position: pos(calls), Found: true}, nil
	}}

	rankings := newFakeRankingStore()
	notifications := &fakeNotificationStore{}
	svc := NewService(provider.NewRegistry(p), fakeSettings{}, rankings, notifications, slog.Default())

	pairs := []models.KeywordWithDomain{testPair(), testPair(), testPair()}
	err := svc.CheckKeywordBatch(context.Background(), pairs)
	if !errors.Is(err, provider.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	// The successful prefix (first request) is still persisted.
	if len(rankings.created) != 1 {
		t.Errorf("got %d history rows, want 1", len(rankings.created))
	}
}

func TestInstantLookupSecondRoundTrip(t *testing.T) {
	p := &fakeProvider{
		name:   "serpapi",
		result: &provider.RankingResult{Position: pos(4), Found: true, Domain: "example.com"},
		organic: []serp.OrganicResult{
			{Position: 1, Title: "Other", Link: "https://other.com/"},
			{Position: 4, Title: "Example", Link: "https://example.com/landing"},
		},
	}
	svc, rankings, _ := newTestService(p, fakeSettings{})

	result, err := svc.InstantLookup(context.Background(), InstantLookupRequest{
		Keyword: "best coffee",
		Domain:  "example.com",
	})
	if err != nil {
		t.Fatalf("InstantLookup() error = %v", err)
	}

	if !result.Found || *result.Position != 4 {
		t.Errorf("result = %+v", result)
	}
	// found=true requires the second call; it recovers the matched URL.
	if p.organicCalls != 1 {
		t.Errorf("organic calls = %d, want 1", p.organicCalls)
	}
	if result.MatchedURL != "https://example.com/landing" {
		t.Errorf("matched URL = %q", result.MatchedURL)
	}
	// Instant lookups persist nothing.
	if len(rankings.created) != 0 || len(rankings.calls) != 0 {
		t.Error("instant lookup touched the ranking store")
	}
}

func TestInstantLookupNotFoundSkipsSecondCall(t *testing.T) {
	p := &fakeProvider{name: "serpapi", result: &provider.RankingResult{Found: false, Domain: "example.com"}}
	svc, _, _ := newTestService(p, fakeSettings{})

	result, err := svc.InstantLookup(context.Background(), InstantLookupRequest{Keyword: "kw", Domain: "example.com"})
	if err != nil {
		t.Fatalf("InstantLookup() error = %v", err)
	}
	if result.Found || result.Position != nil || result.MatchedURL != "" {
		t.Errorf("result = %+v", result)
	}
	if p.organicCalls != 0 {
		t.Errorf("organic calls = %d, want 0 when not found", p.organicCalls)
	}
}

func TestActiveProviderLateBinding(t *testing.T) {
	serpapi := &fakeProvider{name: "serpapi", result: &provider.RankingResult{Found: false}}
	robot := &fakeProvider{name: "scrapingrobot", result: &provider.RankingResult{Found: false}}
	settings := fakeSettings{ActiveProviderSetting: "serpapi"}

	rankings := newFakeRankingStore()
	svc := NewService(provider.NewRegistry(serpapi, robot), settings, rankings, &fakeNotificationStore{}, slog.Default())

	pair := testPair()
	ctx := context.Background()
	if _, err := svc.CheckKeyword(ctx, pair); err != nil {
		t.Fatalf("CheckKeyword() error = %v", err)
	}

	// Flip the setting; the next operation must use the other adapter
	// without any reconstruction.
	settings[ActiveProviderSetting] = "scrapingrobot"
	if _, err := svc.CheckKeyword(ctx, pair); err != nil {
		t.Fatalf("CheckKeyword() error = %v", err)
	}

	if serpapi.checkCalls != 1 || robot.checkCalls != 1 {
		t.Errorf("adapter calls = (%d, %d), want (1, 1)", serpapi.checkCalls, robot.checkCalls)
	}
}

func TestActiveProviderUnknownID(t *testing.T) {
	p := &fakeProvider{name: "serpapi"}
	svc, _, _ := newTestService(p, fakeSettings{ActiveProviderSetting: "altavista"})

	_, err := svc.CheckKeyword(context.Background(), testPair())
	if !errors.Is(err, provider.ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

// scriptedProvider delegates checks to a closure.
type scriptedProvider struct {
	name  string
	check func(provider.CheckRequest) (*provider.RankingResult, error)
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) CheckRanking(_ context.Context, req provider.CheckRequest) (*provider.RankingResult, error) {
	return p.check(req)
}

func (p *scriptedProvider) BatchCheckRanking(ctx context.Context, reqs []provider.CheckRequest) ([]*provider.RankingResult, error) {
	var results []*provider.RankingResult
	for _, req := range reqs {
		res, err := p.check(req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (p *scriptedProvider) GetOrganicResults(context.Context, provider.CheckRequest) ([]serp.OrganicResult, error) {
	return nil, nil
}

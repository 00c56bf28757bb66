package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/service"
	"github.com/huhsame/instructor-scout-go/internal/service/cache"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeRoster struct {
	rows   []*domain.Instructor
	scopes []domain.SearchScope
}

func (f *fakeRoster) Search(_ string, scope domain.SearchScope) []*domain.Instructor {
	f.scopes = append(f.scopes, scope)
	return f.rows
}

func (f *fakeRoster) Count() int {
	return len(f.rows)
}

func newTestServer(roster *fakeRoster) http.Handler {
	return New(nil, roster, zap.NewNop()).Routes()
}

type stubFinder struct {
	profile *domain.PersonProfile
	err     error
}

func (s *stubFinder) Find(_ context.Context, _ string) (*domain.PersonProfile, error) {
	return s.profile, s.err
}

type stubDiscoverer struct {
	candidates []*domain.MediaCandidate
}

func (s *stubDiscoverer) Discover(_ context.Context, _ domain.Subject) []*domain.MediaCandidate {
	return s.candidates
}

func newSearchServer(roster *fakeRoster, finder *stubFinder, discoverer *stubDiscoverer) http.Handler {
	scout := service.NewScout(service.ScoutDeps{
		Person:    finder,
		Discovery: discoverer,
		Store:     cache.NewMemoryStore(),
	}, zap.NewNop())
	return New(scout, roster, zap.NewNop()).Routes()
}

func TestHealthEndpoint(t *testing.T) {
	roster := &fakeRoster{rows: []*domain.Instructor{{Name: "김양민"}}}
	handler := newTestServer(roster)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["instructors"] != float64(1) {
		t.Errorf("instructors = %v, want 1", body["instructors"])
	}
}

func TestInstructorsEndpoint(t *testing.T) {
	roster := &fakeRoster{rows: []*domain.Instructor{{Name: "김양민", Role: "교수"}}}
	handler := newTestServer(roster)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instructors?q=김양민&scope=name", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body instructorsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Instructors) != 1 || body.Instructors[0].Name != "김양민" {
		t.Errorf("instructors = %+v", body.Instructors)
	}
	if len(roster.scopes) != 1 || roster.scopes[0] != domain.ScopeName {
		t.Errorf("scope passed to roster = %v", roster.scopes)
	}
}

func TestInstructorsRequiresQuery(t *testing.T) {
	handler := newTestServer(&fakeRoster{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instructors", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestInstructorsUnknownScopeDefaultsToAll(t *testing.T) {
	roster := &fakeRoster{}
	handler := newTestServer(roster)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instructors?q=x&scope=bogus", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(roster.scopes) != 1 || roster.scopes[0] != domain.ScopeAll {
		t.Errorf("unknown scope must fall back to all, got %v", roster.scopes)
	}
}

func TestSearchTotalMissMessage(t *testing.T) {
	fallbackOnly := &stubDiscoverer{candidates: []*domain.MediaCandidate{
		{Kind: domain.CandidateSearchFallback, Title: "유튜브에서 검색", URL: "https://www.youtube.com/results?search_query=김양민"},
	}}
	finder := &stubFinder{err: scouterrors.NewContentError("no person results", "김양민")}
	handler := newSearchServer(&fakeRoster{}, finder, fallbackOnly)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=김양민", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Message != totalMissMessage {
		t.Errorf("Message = %q, want the total-miss message", body.Message)
	}
	if len(body.Candidates) != 1 || !body.Candidates[0].IsSearchFallback() {
		t.Errorf("the fallback candidate must still be returned: %+v", body.Candidates)
	}
}

func TestSearchMessageSuppressedByAnyHit(t *testing.T) {
	fallbackOnly := []*domain.MediaCandidate{
		{Kind: domain.CandidateSearchFallback, URL: "https://www.youtube.com/results?search_query=김양민"},
	}
	miss := scouterrors.NewContentError("no person results", "김양민")

	cases := []struct {
		name       string
		roster     *fakeRoster
		finder     *stubFinder
		discoverer *stubDiscoverer
	}{
		{
			name:       "roster row",
			roster:     &fakeRoster{rows: []*domain.Instructor{{Name: "김양민", Role: "교수"}}},
			finder:     &stubFinder{err: miss},
			discoverer: &stubDiscoverer{candidates: fallbackOnly},
		},
		{
			name:       "person profile",
			roster:     &fakeRoster{},
			finder:     &stubFinder{profile: &domain.PersonProfile{Name: "김양민"}},
			discoverer: &stubDiscoverer{candidates: fallbackOnly},
		},
		{
			name:   "content candidate",
			roster: &fakeRoster{},
			finder: &stubFinder{err: miss},
			discoverer: &stubDiscoverer{candidates: []*domain.MediaCandidate{
				{Kind: domain.CandidateVideo, URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newSearchServer(tc.roster, tc.finder, tc.discoverer)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=김양민", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}

			var body searchResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Message != "" {
				t.Errorf("Message = %q, want empty", body.Message)
			}
		})
	}
}

func TestSummaryRequiresURL(t *testing.T) {
	handler := newTestServer(&fakeRoster{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHasContentCandidate(t *testing.T) {
	onlyFallback := []*domain.MediaCandidate{
		{Kind: domain.CandidateSearchFallback, URL: "s"},
	}
	if hasContentCandidate(onlyFallback) {
		t.Error("a lone search fallback is not content")
	}

	withVideo := append(onlyFallback, &domain.MediaCandidate{Kind: domain.CandidateVideo, URL: "v"})
	if !hasContentCandidate(withVideo) {
		t.Error("a video candidate counts as content")
	}
	if hasContentCandidate(nil) {
		t.Error("empty list has no content")
	}
}

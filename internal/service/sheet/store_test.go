package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/huhsame/instructor-scout-go/internal/domain"
	"go.uber.org/zap"
)

const rosterCSV = `강사 이름,소속,직업,강의 가능 과목,E-mail,대분야,소분야,비고
김양민,서강대학교,교수,경영전략,kim@example.com,경영,전략경영,추천
이철수,한국대학교,컨설턴트,디지털 마케팅,lee@example.com,마케팅,,
김양민,서강대학교,교수,경영전략,kim@example.com,경영,전략경영,중복 행
박영희,,강사,데이터 분석,,IT,머신러닝,
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := newStore(strings.NewReader(rosterCSV), zap.NewNop())
	if err != nil {
		t.Fatalf("newStore failed: %v", err)
	}
	return store
}

func TestStoreDeduplicatesRows(t *testing.T) {
	store := newTestStore(t)
	if store.Count() != 3 {
		t.Errorf("Count = %d, want 3 after name+email dedup", store.Count())
	}
}

func TestStoreFuzzyColumnMapping(t *testing.T) {
	store := newTestStore(t)

	results := store.Search("김양민", domain.ScopeName)
	if len(results) != 1 {
		t.Fatalf("Search returned %d rows, want 1", len(results))
	}

	got := results[0]
	if got.Affiliation != "서강대학교" || got.Role != "교수" || got.Email != "kim@example.com" {
		t.Errorf("mapped fields wrong: %+v", got)
	}
	if got.PrimaryTopic != "경영" || got.SecondaryTopic != "전략경영" {
		t.Errorf("topic fields wrong: %+v", got)
	}
	if got.Extra["비고"] != "추천" {
		t.Errorf("unmapped column must land in Extra, got %+v", got.Extra)
	}
}

func TestStoreSearchScopes(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		query string
		scope domain.SearchScope
		want  int
	}{
		{"김양민", domain.ScopeName, 1},
		{"마케팅", domain.ScopeField, 1},
		{"마케팅", domain.ScopeSubject, 1},
		{"마케팅", domain.ScopeAll, 1},
		{"경영", domain.ScopeAll, 1},
		{"없는사람", domain.ScopeAll, 0},
		// scope restriction: an affiliation only matches in the all scope
		{"서강대", domain.ScopeName, 0},
		{"서강대", domain.ScopeAll, 1},
	}

	for _, tc := range cases {
		if got := len(store.Search(tc.query, tc.scope)); got != tc.want {
			t.Errorf("Search(%q, %s) = %d rows, want %d", tc.query, tc.scope, got, tc.want)
		}
	}
}

func TestStoreSearchCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	if got := len(store.Search("it", domain.ScopeField)); got != 1 {
		t.Errorf("case-insensitive field search returned %d rows, want 1", got)
	}
}

func TestStoreToSubject(t *testing.T) {
	store := newTestStore(t)
	results := store.Search("김양민", domain.ScopeName)
	if len(results) != 1 {
		t.Fatal("fixture row missing")
	}

	subject := results[0].ToSubject()
	if subject.Name != "김양민" || subject.Role != "교수" {
		t.Errorf("ToSubject = %+v", subject)
	}
	if subject.CacheKey() != "김양민|교수|전략경영" {
		t.Errorf("CacheKey = %q", subject.CacheKey())
	}
}

func TestNewStoreFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rosterCSV))
	}))
	defer srv.Close()

	store, err := NewStoreFromURL(context.Background(), srv.URL, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStoreFromURL failed: %v", err)
	}
	if store.Count() != 3 {
		t.Errorf("Count = %d, want 3", store.Count())
	}
}

func TestNewStoreRejectsHeaderWithoutName(t *testing.T) {
	if _, err := newStore(strings.NewReader("소속,직업\nA,B\n"), zap.NewNop()); err == nil {
		t.Fatal("expected an error for a roster without a name column")
	}
}

func TestEmptyStore(t *testing.T) {
	store := NewEmptyStore(zap.NewNop())
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}
	if got := store.Search("김양민", domain.ScopeAll); len(got) != 0 {
		t.Errorf("empty store must return no rows, got %d", len(got))
	}
}

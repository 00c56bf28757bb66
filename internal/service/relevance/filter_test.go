package relevance

import (
	"testing"

	"github.com/huhsame/instructor-scout-go/internal/domain"
)

func TestScoreAgainstFullSubject(t *testing.T) {
	filter := NewFilter()
	subject := domain.Subject{
		Name:           "김양민",
		Role:           "교수",
		PrimaryTopic:   "경영",
		SecondaryTopic: "마케팅",
	}

	cases := []struct {
		title string
		want  int
	}{
		// name +3, role +2, secondary +2, education +1
		{"김양민 교수 마케팅 특강", 8},
		// name +3, off-topic -3
		{"김양민 여행 브이로그", 0},
		// name absent -2, secondary +2, education +1
		{"마케팅 전략 세미나", 1},
		// name absent -2, off-topic -3
		{"맛집 탐방 일상", -5},
		// name +3 only
		{"김양민 인터뷰", 3},
	}

	for _, tc := range cases {
		if got := filter.Score(tc.title, subject); got != tc.want {
			t.Errorf("Score(%q) = %d, want %d", tc.title, got, tc.want)
		}
	}
}

func TestScoreCountsNameOnce(t *testing.T) {
	filter := NewFilter()
	subject := domain.Subject{Name: "김양민 박사"}

	// Both name tokens appear; the bonus applies once.
	if got := filter.Score("김양민 박사 대담", subject); got != 3 {
		t.Errorf("Score = %d, want 3", got)
	}
}

func TestScorePrimaryOnlyWithoutSecondary(t *testing.T) {
	filter := NewFilter()

	withSecondary := domain.Subject{Name: "김양민", PrimaryTopic: "경영", SecondaryTopic: "마케팅"}
	// name +3, primary ignored because a secondary topic exists
	if got := filter.Score("김양민 경영 이야기", withSecondary); got != 3 {
		t.Errorf("Score with secondary = %d, want 3", got)
	}

	withoutSecondary := domain.Subject{Name: "김양민", PrimaryTopic: "경영"}
	// name +3, primary +1
	if got := filter.Score("김양민 경영 이야기", withoutSecondary); got != 4 {
		t.Errorf("Score without secondary = %d, want 4", got)
	}
}

func TestApplyKeepsOriginalOrder(t *testing.T) {
	filter := NewFilter()
	subject := domain.Subject{Name: "김양민", Role: "교수", SecondaryTopic: "마케팅"}

	candidates := []*domain.MediaCandidate{
		{Kind: domain.CandidateVideo, URL: "u1", Title: "마케팅 전략 세미나", Order: 0},
		{Kind: domain.CandidateVideo, URL: "u2", Title: "김양민 여행 브이로그", Order: 1},
		{Kind: domain.CandidateVideo, URL: "u3", Title: "김양민 교수 마케팅 특강", Order: 2},
	}

	got := filter.Apply(candidates, subject)
	if len(got) != 2 {
		t.Fatalf("Apply returned %d candidates, want 2", len(got))
	}
	if got[0].URL != "u1" || got[1].URL != "u3" {
		t.Errorf("Apply order = [%s, %s], want [u1, u3]", got[0].URL, got[1].URL)
	}
	if got[0].RelevanceScore < filter.MinScore || got[1].RelevanceScore < filter.MinScore {
		t.Errorf("survivors must carry scores at or above MinScore, got %d and %d",
			got[0].RelevanceScore, got[1].RelevanceScore)
	}
}

func TestApplyPassesThroughNonVideos(t *testing.T) {
	filter := NewFilter()
	subject := domain.Subject{Name: "김양민", Role: "교수"}

	candidates := []*domain.MediaCandidate{
		{Kind: domain.CandidateChannel, URL: "c1", Title: "전혀 무관한 채널"},
		{Kind: domain.CandidateSearchFallback, URL: "s1", Title: "유튜브에서 검색"},
		{Kind: domain.CandidateVideo, URL: "v1", Title: "맛집 먹방"},
	}

	got := filter.Apply(candidates, subject)
	if len(got) != 2 {
		t.Fatalf("Apply returned %d candidates, want 2", len(got))
	}
	if !got[0].IsChannel() || !got[1].IsSearchFallback() {
		t.Errorf("channels and fallbacks must pass through unscored")
	}
}

package constants

import "time"

var Endpoints = struct {
	NaverSearchURL    string
	YouTubeBaseURL    string
	YouTubeSearchURL  string
	YouTubeWatchURL   string
	YouTubeChannelURL string
	TimedTextURL      string
}{
	NaverSearchURL:    "https://search.naver.com/search.naver",
	YouTubeBaseURL:    "https://www.youtube.com",
	YouTubeSearchURL:  "https://www.youtube.com/results",
	YouTubeWatchURL:   "https://www.youtube.com/watch?v=",
	YouTubeChannelURL: "https://www.youtube.com/channel/",
	TimedTextURL:      "https://www.youtube.com/api/timedtext",
}

// Browser-like headers keep the scraping endpoints from serving the bot page.
var Headers = struct {
	UserAgent      string
	Accept         string
	AcceptXML      string
	AcceptLanguage string
}{
	UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	AcceptXML:      "text/xml,application/xml,*/*",
	AcceptLanguage: "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
}

var Timeouts = struct {
	Search         time.Duration // search/listing pages
	Captions       time.Duration // timedtext retrieval
	ChannelListing time.Duration // channel /videos pages are heavier
}{
	Search:         10 * time.Second,
	Captions:       15 * time.Second,
	ChannelListing: 20 * time.Second,
}

// Discovery limits: collect up to 20 raw candidates, return at most 15, drop
// to regex recovery when the structured parse yields fewer than 5.
var DiscoveryLimits = struct {
	MaxRaw          int
	MaxReturned     int
	RegexFallbackAt int
}{
	MaxRaw:          20,
	MaxReturned:     15,
	RegexFallbackAt: 5,
}

// Relevance tuning. MinScore and MinSurvivors are empirically tuned values with
// no documented derivation; they are configurable constants on purpose.
var RelevanceDefaults = struct {
	MinScore     int
	MinSurvivors int
}{
	MinScore:     1,
	MinSurvivors: 2,
}

var SynopsisBand = struct {
	TargetLength int
	MinLength    int
	MaxLength    int
}{
	TargetLength: 1000,
	MinLength:    900,
	MaxLength:    1100,
}

// MinTranscriptRunes: anything at or under this after trimming is treated as
// absent, not a transcript.
const MinTranscriptRunes = 50

// GenerativeModels is the default model priority list (most capable/fastest
// first). Members go stale; it is injectable configuration, not a fixed constant.
var GenerativeModels = []string{
	"gemini-flash-lite-latest",
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

// RoleKeywords is the whitelist used both for query construction and role
// scoring. First match wins.
var RoleKeywords = []string{"교수", "박사", "강사", "CEO", "대표", "이사", "연구원", "교사", "전문가"}

// RoleScoreKeywords extends the query whitelist for title scoring (lowercase).
var RoleScoreKeywords = []string{"교수", "박사", "강사", "ceo", "대표", "이사", "연구원", "교사", "전문가", "컨설턴트"}

var EducationKeywords = []string{"강의", "강연", "세미나", "특강", "강좌", "교육", "lecture", "seminar"}

var OffTopicKeywords = []string{"먹방", "일상", "vlog", "브이로그", "여행", "맛집", "게임", "리뷰", "언박싱"}

var YouTubeAPIQuota = struct {
	DailyLimit   int
	SearchCost   int
	SafetyMargin int
}{
	DailyLimit:   10000,
	SearchCost:   100,
	SafetyMargin: 2000,
}

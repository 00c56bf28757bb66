// Package youtube covers the scraping side of the pipeline: search-result
// discovery, channel/video resolution, transcript retrieval, and page
// metadata. Everything here works against unversioned third-party pages, so
// each extractor carries a structured primary strategy and a cruder fallback.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/service/relevance"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	initialDataMarker = "var ytInitialData = "
	initialDataEnd    = ";</script>"
	videoIDLength     = 11
	minChannelIDLen   = 11 // channel ids are longer than 10 characters
)

var (
	fallbackVideoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`),
		regexp.MustCompile(`/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`watch\?v=([a-zA-Z0-9_-]{11})`),
	}
	fallbackChannelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"channelId":"([^"]+)"`),
		regexp.MustCompile(`/channel/([^"/\s]+)`),
	}
)

// Discovery scrapes the video platform's search results page. An optional
// quota-guarded Data API backup can be consulted first; the scrape remains the
// primary path because the API budget is tiny.
type Discovery struct {
	httpClient *http.Client
	filter     *relevance.Filter
	api        *APIService
	logger     *zap.Logger
	searchURL  string
}

func NewDiscovery(filter *relevance.Filter, api *APIService, logger *zap.Logger) *Discovery {
	return &Discovery{
		httpClient: &http.Client{Timeout: constants.Timeouts.Search},
		filter:     filter,
		api:        api,
		logger:     logger,
		searchURL:  constants.Endpoints.YouTubeSearchURL,
	}
}

// BuildQuery assembles the weighted search query: name, then one whitelisted
// role keyword (first match wins), then the secondary topic if it has at most
// three words, otherwise the primary topic if it has at most two.
func BuildQuery(subject domain.Subject) string {
	parts := []string{subject.Name}

	if subject.Role != "" {
		for _, keyword := range constants.RoleKeywords {
			if strings.Contains(subject.Role, keyword) {
				parts = append(parts, keyword)
				break
			}
		}
	}

	if topic := strings.TrimSpace(subject.SecondaryTopic); topic != "" && len(strings.Fields(topic)) <= 3 {
		parts = append(parts, topic)
	} else if topic := strings.TrimSpace(subject.PrimaryTopic); topic != "" && len(strings.Fields(topic)) <= 2 {
		parts = append(parts, topic)
	}

	return strings.Join(parts, " ")
}

// SearchURLFor returns the platform's own search URL for a query, used by the
// fallback candidate so the user always has a manual path.
func (d *Discovery) SearchURLFor(query string) string {
	return fmt.Sprintf("%s?search_query=%s", d.searchURL, url.QueryEscape(query))
}

// Discover returns at most 15 relevant candidates for the subject, or exactly
// one search-fallback candidate on total failure. The returned slice is never
// nil-sparse: ordering is the platform's own, deduplicated by URL.
func (d *Discovery) Discover(ctx context.Context, subject domain.Subject) []*domain.MediaCandidate {
	query := BuildQuery(subject)

	raw := d.collect(ctx, query)
	if raw == nil {
		// Total transport failure: the fallback embeds only the bare name so a
		// manual search is not poisoned by possibly-wrong context.
		return []*domain.MediaCandidate{d.searchFallback(subject.Name)}
	}

	unique := domain.DedupCandidates(raw)

	if subject.HasContext() {
		filtered := d.filter.Apply(unique, subject)
		if len(filtered) >= d.filter.MinSurvivors {
			return truncate(filtered, constants.DiscoveryLimits.MaxReturned)
		}
		// A single weak match is noise, not a result: summarizing the wrong
		// video downstream costs more than showing nothing.
		d.logger.Debug("Relevance filter collapsed result",
			zap.String("query", query),
			zap.Int("survivors", len(filtered)),
		)
		return []*domain.MediaCandidate{}
	}

	if len(unique) > 0 {
		return truncate(unique, constants.DiscoveryLimits.MaxReturned)
	}

	return []*domain.MediaCandidate{d.searchFallback(query)}
}

// collect gathers raw candidates from the API backup (when configured) and the
// search page scrape. A nil return means total transport failure.
func (d *Discovery) collect(ctx context.Context, query string) []*domain.MediaCandidate {
	if d.api != nil {
		if candidates, err := d.api.Search(ctx, query, constants.DiscoveryLimits.MaxRaw); err != nil {
			d.logger.Debug("Data API backup unavailable, scraping", zap.Error(err))
		} else if len(candidates) > 0 {
			return candidates
		}
	}

	body, err := d.fetchSearchPage(ctx, query)
	if err != nil {
		d.logger.Warn("Video search fetch failed",
			zap.String("query", query),
			zap.String("code", scouterrors.CodeOf(err)),
			zap.Error(err),
		)
		return nil
	}

	candidates := parseInitialData(body)
	if len(candidates) < constants.DiscoveryLimits.RegexFallbackAt {
		candidates = appendRegexCandidates(candidates, body)
	}
	return candidates
}

func (d *Discovery) fetchSearchPage(ctx context.Context, query string) (string, error) {
	searchURL := d.SearchURLFor(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to build search request", searchURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept", constants.Headers.Accept)
	req.Header.Set("Accept-Language", constants.Headers.AcceptLanguage)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", scouterrors.NewTransportError("video search request failed", searchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", scouterrors.NewTransportError(
			fmt.Sprintf("video search returned status %d", resp.StatusCode), searchURL, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to read search response", searchURL, err)
	}
	return string(body), nil
}

func (d *Discovery) searchFallback(query string) *domain.MediaCandidate {
	return &domain.MediaCandidate{
		Kind:  domain.CandidateSearchFallback,
		URL:   d.SearchURLFor(query),
		ID:    "search",
		Title: "유튜브에서 검색",
		Order: 0,
	}
}

func truncate(candidates []*domain.MediaCandidate, max int) []*domain.MediaCandidate {
	if len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}

// The slice of ytInitialData the search results live under. Only the fields
// walked below are declared; everything else in the blob is noise.
type initialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []sectionContent `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type sectionContent struct {
	ItemSectionRenderer struct {
		Contents []searchItem `json:"contents"`
	} `json:"itemSectionRenderer"`
}

type searchItem struct {
	VideoRenderer   *videoRenderer   `json:"videoRenderer"`
	ChannelRenderer *channelRenderer `json:"channelRenderer"`
}

type videoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"title"`
	PublishedTimeText struct {
		SimpleText string `json:"simpleText"`
	} `json:"publishedTimeText"`
}

type channelRenderer struct {
	ChannelID string `json:"channelId"`
	Title     struct {
		SimpleText string `json:"simpleText"`
	} `json:"title"`
}

// parseInitialData walks the embedded initial-state JSON blob. Any parse
// failure yields an empty slice; the caller falls through to regex recovery.
func parseInitialData(body string) []*domain.MediaCandidate {
	start := strings.Index(body, initialDataMarker)
	if start == -1 {
		return nil
	}
	start += len(initialDataMarker)
	end := strings.Index(body[start:], initialDataEnd)
	if end == -1 {
		return nil
	}

	var data initialData
	if err := json.Unmarshal([]byte(body[start:start+end]), &data); err != nil {
		return nil
	}

	candidates := make([]*domain.MediaCandidate, 0, constants.DiscoveryLimits.MaxRaw)
	seen := make(map[string]struct{})

	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			switch {
			case item.VideoRenderer != nil:
				video := item.VideoRenderer
				if len(video.VideoID) != videoIDLength {
					continue
				}
				if _, ok := seen[video.VideoID]; ok {
					continue
				}
				title := fmt.Sprintf("동영상 %d", len(candidates)+1)
				if len(video.Title.Runs) > 0 && video.Title.Runs[0].Text != "" {
					title = video.Title.Runs[0].Text
				}
				candidates = append(candidates, &domain.MediaCandidate{
					Kind:        domain.CandidateVideo,
					URL:         constants.Endpoints.YouTubeWatchURL + video.VideoID,
					ID:          video.VideoID,
					Title:       title,
					PublishedAt: video.PublishedTimeText.SimpleText,
					Order:       len(candidates),
				})
				seen[video.VideoID] = struct{}{}

			case item.ChannelRenderer != nil:
				channel := item.ChannelRenderer
				if channel.ChannelID == "" {
					continue
				}
				if _, ok := seen[channel.ChannelID]; ok {
					continue
				}
				title := channel.Title.SimpleText
				if title == "" {
					title = fmt.Sprintf("채널 %d", countKind(candidates, domain.CandidateChannel)+1)
				}
				candidates = append(candidates, &domain.MediaCandidate{
					Kind:  domain.CandidateChannel,
					URL:   constants.Endpoints.YouTubeChannelURL + channel.ChannelID,
					ID:    channel.ChannelID,
					Title: title,
					Order: len(candidates),
				})
				seen[channel.ChannelID] = struct{}{}
			}

			if len(candidates) >= constants.DiscoveryLimits.MaxRaw {
				return candidates
			}
		}
	}

	return candidates
}

// appendRegexCandidates recovers ids from raw markup when the structured parse
// came up short. Placeholder titles are synthesized since no title text is
// available on this path.
func appendRegexCandidates(candidates []*domain.MediaCandidate, body string) []*domain.MediaCandidate {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = struct{}{}
	}

	for _, pattern := range fallbackVideoPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			videoID := match[1]
			if len(videoID) != videoIDLength {
				continue
			}
			if _, ok := seen[videoID]; ok {
				continue
			}
			candidates = append(candidates, &domain.MediaCandidate{
				Kind:  domain.CandidateVideo,
				URL:   constants.Endpoints.YouTubeWatchURL + videoID,
				ID:    videoID,
				Title: fmt.Sprintf("동영상 %d", countKind(candidates, domain.CandidateVideo)+1),
				Order: len(candidates),
			})
			seen[videoID] = struct{}{}
			if len(candidates) >= constants.DiscoveryLimits.MaxRaw {
				return candidates
			}
		}
	}

	for _, pattern := range fallbackChannelPatterns {
		for _, match := range pattern.FindAllStringSubmatch(body, -1) {
			channelID := match[1]
			if len(channelID) < minChannelIDLen {
				continue
			}
			if _, ok := seen[channelID]; ok {
				continue
			}
			candidates = append(candidates, &domain.MediaCandidate{
				Kind:  domain.CandidateChannel,
				URL:   constants.Endpoints.YouTubeChannelURL + channelID,
				ID:    channelID,
				Title: fmt.Sprintf("채널 %d", countKind(candidates, domain.CandidateChannel)+1),
				Order: len(candidates),
			})
			seen[channelID] = struct{}{}
			if len(candidates) >= constants.DiscoveryLimits.MaxRaw {
				return candidates
			}
		}
	}

	return candidates
}

func countKind(candidates []*domain.MediaCandidate, kind domain.CandidateKind) int {
	count := 0
	for _, c := range candidates {
		if c.Kind == kind {
			count++
		}
	}
	return count
}

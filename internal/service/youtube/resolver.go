package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/huhsame/instructor-scout-go/internal/constants"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

var (
	watchURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/watch\?v=([^&]+)`),
		regexp.MustCompile(`youtu\.be/([^?]+)`),
		regexp.MustCompile(`youtube\.com/embed/([^?]+)`),
		regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	}
	bareVideoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

	channelPathMarkers = []string{"/channel/", "/c/", "/@", "/user/"}

	// Listing pages embed video ids in several script shapes; checked in order
	// of decreasing strictness before falling back to watch-link forms.
	listingScriptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`),
		regexp.MustCompile(`"videoId":\s*"([a-zA-Z0-9_-]{11})"`),
		regexp.MustCompile(`videoId["\s]*[:=]["\s]*"?([a-zA-Z0-9_-]{11})`),
	}
	listingWatchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	}
	listingPageWidePattern = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
)

// ExtractVideoID pulls an 11-character video id out of any supported URL
// shape, or returns the input unchanged when it already is a bare id. Returns
// the empty string when nothing matches. Channel URLs never yield an id here:
// the generic pattern would otherwise bite 11 characters off a channel id, so
// they are rejected up front and left for ChannelLatest.
func ExtractVideoID(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || IsChannelURL(rawURL) {
		return ""
	}

	for _, pattern := range watchURLPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			if len(match[1]) == videoIDLength {
				return match[1]
			}
		}
	}

	if bareVideoIDPattern.MatchString(rawURL) {
		return rawURL
	}
	return ""
}

// IsChannelURL reports whether the URL points at a channel rather than a
// single video.
func IsChannelURL(rawURL string) bool {
	for _, marker := range channelPathMarkers {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}
	return false
}

// Resolver turns a channel URL into its most recent video id by scraping the
// channel's uploads listing.
type Resolver struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: constants.Timeouts.ChannelListing},
		logger:     logger,
	}
}

// ChannelLatest fetches the channel's /videos listing and returns the first
// video id it can find. Script blocks are scanned individually first; the
// page-wide sweep is the last resort.
func (r *Resolver) ChannelLatest(ctx context.Context, channelURL string) (string, error) {
	listingURL := normalizeListingURL(channelURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to build channel request", listingURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept", constants.Headers.Accept)
	req.Header.Set("Accept-Language", constants.Headers.AcceptLanguage)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", scouterrors.NewTransportError("channel listing request failed", listingURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", scouterrors.NewTransportError(
			fmt.Sprintf("channel listing returned status %d", resp.StatusCode), listingURL, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to read channel listing", listingURL, err)
	}
	page := string(body)

	if videoID := scanListingScripts(page); videoID != "" {
		return videoID, nil
	}

	if videoID := scanListingPageWide(page); videoID != "" {
		r.logger.Debug("Channel listing resolved via page-wide scan", zap.String("url", listingURL))
		return videoID, nil
	}

	return "", scouterrors.NewStructureError("no video id found in channel listing", listingURL)
}

func normalizeListingURL(channelURL string) string {
	channelURL = strings.TrimSpace(channelURL)
	if strings.Contains(channelURL, "/videos") {
		return channelURL
	}
	return strings.TrimRight(channelURL, "/") + "/videos"
}

func scanListingScripts(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		for _, pattern := range listingScriptPatterns {
			if match := pattern.FindStringSubmatch(content); match != nil {
				found = match[1]
				return false
			}
		}
		for _, pattern := range listingWatchPatterns {
			if match := pattern.FindStringSubmatch(content); match != nil {
				found = match[1]
				return false
			}
		}
		return true
	})
	return found
}

func scanListingPageWide(page string) string {
	matches := listingPageWidePattern.FindAllStringSubmatch(page, -1)
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		return match[1]
	}
	return ""
}

package youtube

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/huhsame/instructor-scout-go/internal/constants"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const maxRecentVideos = 3

var (
	subscriberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`구독자\s*([\d.]+[만천억]*)\s*명`),
		regexp.MustCompile(`([\d.]+[만천억]+)\s*구독자`),
		regexp.MustCompile(`(?i)subscribers?[:\s]+([\d,.]+[KMB]?)`),
	}
	videoCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`동영상\s*([\d,]+)\s*개`),
		regexp.MustCompile(`([\d,]+)\s*동영상`),
		regexp.MustCompile(`(?i)videos?[:\s]+([\d,]+)`),
	}
)

// PageMetadata is the Open-Graph surface of a watch or channel page plus the
// channel statistics scraped from the raw markup.
type PageMetadata struct {
	Title           string
	Description     string
	SubscriberCount string
	VideoCount      string
	RecentVideos    []string
}

// MetadataClient scrapes display metadata off video and channel pages.
type MetadataClient struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewMetadataClient(logger *zap.Logger) *MetadataClient {
	return &MetadataClient{
		httpClient: &http.Client{Timeout: constants.Timeouts.Search},
		logger:     logger,
	}
}

// Fetch returns whatever metadata the page exposes. Missing fields stay
// empty; only transport and parse failures surface as errors.
func (m *MetadataClient) Fetch(ctx context.Context, pageURL string) (*PageMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to build metadata request", pageURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept", constants.Headers.Accept)
	req.Header.Set("Accept-Language", constants.Headers.AcceptLanguage)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, scouterrors.NewTransportError("metadata request failed", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scouterrors.NewTransportError(
			fmt.Sprintf("metadata fetch returned status %d", resp.StatusCode), pageURL, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, scouterrors.NewStructureError("failed to parse page", pageURL)
	}

	meta := &PageMetadata{
		Title:       ogContent(doc, "og:title"),
		Description: ogContent(doc, "og:description"),
	}

	page, err := doc.Html()
	if err != nil {
		return meta, nil
	}

	meta.SubscriberCount = firstSubmatch(subscriberPatterns, page)
	meta.VideoCount = firstSubmatch(videoCountPatterns, page)
	meta.RecentVideos = recentVideoTitles(doc, meta.Title)

	return meta, nil
}

func ogContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstSubmatch(patterns []*regexp.Regexp, page string) string {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(page); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// recentVideoTitles collects up to three distinct og:title values that differ
// from the page's own title. Channel pages sometimes embed upload titles this
// way; when they do not, the list is simply empty.
func recentVideoTitles(doc *goquery.Document, pageTitle string) []string {
	var titles []string
	seen := map[string]struct{}{pageTitle: {}}

	doc.Find(`meta[property="og:title"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		if content == "" {
			return true
		}
		if _, ok := seen[content]; ok {
			return true
		}
		seen[content] = struct{}{}
		titles = append(titles, content)
		return len(titles) < maxRecentVideos
	})
	return titles
}

// Package person implements the search-engine person-vertical client. The
// markup for a person card varies by query type and has no documented schema,
// so extraction runs an ordered list of strategies and stops at the first
// match; a parse failure in one strategy is "no match", never a hard error.
package person

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/util"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const (
	sourceLabel = "네이버 인물검색"

	attrName        = "이름"
	attrDescription = "설명"
	attrBiography   = "약력"

	noResultsPhrase = "검색 결과가 없습니다"
	noResultsWindow = 5000 // leading characters scanned for the phrase

	minDescriptionRunes = 10
	minBiographyRunes   = 5
	maxBiographyEntries = 5
)

type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	baseURL    string
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: constants.Timeouts.Search},
		logger:     logger,
		baseURL:    constants.Endpoints.NaverSearchURL,
	}
}

// cardStrategy locates a person card in the document, or returns nil.
type cardStrategy func(doc *goquery.Document) *goquery.Selection

var cardStrategies = []cardStrategy{
	func(doc *goquery.Document) *goquery.Selection { return firstOf(doc.Find("div.people_info")) },
	func(doc *goquery.Document) *goquery.Selection { return firstOf(doc.Find("div.api_subject_bx")) },
	func(doc *goquery.Document) *goquery.Selection { return firstOf(doc.Find("div.api_ani_send")) },
	func(doc *goquery.Document) *goquery.Selection {
		sections := doc.Find("section").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return strings.Contains(strings.ToLower(class), "people")
		})
		return firstOf(sections)
	},
}

func firstOf(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return nil
	}
	return sel.First()
}

// Find returns a structured profile for the named person, or a typed error.
// Callers own the policy of collapsing every error category to absent.
func (c *Client) Find(ctx context.Context, name string) (*domain.PersonProfile, error) {
	searchURL := fmt.Sprintf("%s?where=nexearch&query=%s", c.baseURL, url.QueryEscape(name))

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, scouterrors.NewStructureError("person page is not parseable HTML", searchURL)
	}

	profile := &domain.PersonProfile{
		Name:        name,
		SourceLabel: sourceLabel,
		SourceURL:   searchURL,
	}

	card := findCard(doc)
	if card != nil {
		if title := extractTitle(card); title != "" {
			profile.AddAttribute(attrName, title)
		}
		for _, attr := range extractAttributeList(card) {
			profile.AddAttribute(attr.Label, attr.Value)
		}
		if desc := extractDescription(card); desc != "" {
			profile.AddAttribute(attrDescription, desc)
		}
	}

	if bio := extractBiography(doc); bio != "" {
		profile.AddAttribute(attrBiography, bio)
	}
	profile.ImageURL = extractImageURL(doc)

	if len(profile.Attributes) == 0 && profile.ImageURL == "" {
		if isNoResultsPage(doc, body) {
			return nil, scouterrors.NewContentError("person search returned an explicit no-results page", name)
		}
		// Card present but empty: the caller still gets name/source metadata.
		c.logger.Debug("Person card empty", zap.String("name", name))
	}

	c.logger.Debug("Person profile extracted",
		zap.String("name", name),
		zap.Int("attributes", len(profile.Attributes)),
		zap.Bool("has_image", profile.ImageURL != ""),
	)

	return profile, nil
}

func (c *Client) fetch(ctx context.Context, searchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to build person request", searchURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept", constants.Headers.Accept)
	req.Header.Set("Accept-Language", constants.Headers.AcceptLanguage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, scouterrors.NewTransportError("person request failed", searchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scouterrors.NewTransportError(
			fmt.Sprintf("person search returned status %d", resp.StatusCode), searchURL, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to read person response", searchURL, err)
	}
	return body, nil
}

func findCard(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range cardStrategies {
		if card := strategy(doc); card != nil {
			return card
		}
	}
	return nil
}

func extractTitle(card *goquery.Selection) string {
	for _, selector := range []string{"h2.title", "h2", "h3.title", "h3"} {
		if title := firstOf(card.Find(selector)); title != nil {
			if text := strings.TrimSpace(title.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// extractAttributeList pulls label:value pairs from the card's info list.
// Each item is tried as a dt/dd pair first, then as colon-separated text.
func extractAttributeList(card *goquery.Selection) []domain.ProfileAttribute {
	list := firstOf(card.Find("ul.lst_total"))
	if list == nil {
		list = firstOf(card.Find("ul"))
	}
	if list == nil {
		return nil
	}

	var attrs []domain.ProfileAttribute
	list.Find("li").Each(func(_ int, item *goquery.Selection) {
		dt := firstOf(item.Find("dt"))
		dd := firstOf(item.Find("dd"))
		if dt != nil && dd != nil {
			label := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(dt.Text()), ":", ""))
			value := strings.TrimSpace(dd.Text())
			if label != "" && value != "" {
				attrs = append(attrs, domain.ProfileAttribute{Label: label, Value: value})
			}
			return
		}

		text := strings.TrimSpace(item.Text())
		if idx := strings.Index(text, ":"); idx > 0 {
			label := strings.TrimSpace(text[:idx])
			value := strings.TrimSpace(text[idx+1:])
			if label != "" && value != "" {
				attrs = append(attrs, domain.ProfileAttribute{Label: label, Value: value})
			}
		}
	})
	return attrs
}

func extractDescription(card *goquery.Selection) string {
	desc := firstOf(card.Find("div.dsc"))
	if desc == nil {
		desc = firstOf(card.Find("p.dsc"))
	}
	if desc == nil {
		return ""
	}
	text := strings.TrimSpace(desc.Text())
	if util.RuneLen(text) <= minDescriptionRunes {
		// Empty placeholders are shorter than any meaningful description.
		return ""
	}
	return text
}

func extractBiography(doc *goquery.Document) string {
	section := firstOf(doc.Find("section.api_biography"))
	if section == nil {
		section = firstOf(doc.Find("div.api_biography"))
	}
	if section == nil {
		return ""
	}

	var entries []string
	section.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		text := strings.TrimSpace(item.Text())
		if text != "" && util.RuneLen(text) > minBiographyRunes {
			entries = append(entries, text)
		}
		return len(entries) < maxBiographyEntries
	})
	return strings.Join(entries, " | ")
}

func extractImageURL(doc *goquery.Document) string {
	img := firstOf(doc.Find("img.thumb"))
	if img == nil {
		img = firstOf(doc.Find("img._img"))
	}
	if img == nil {
		return ""
	}

	src, ok := img.Attr("src")
	if !ok || src == "" {
		src, _ = img.Attr("data-src")
	}
	if src == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return "https://search.naver.com" + src
	default:
		return src
	}
}

func isNoResultsPage(doc *goquery.Document, body []byte) bool {
	if doc.Find("div._empty_state").Length() > 0 {
		return true
	}
	head := []rune(string(body))
	if len(head) > noResultsWindow {
		head = head[:noResultsWindow]
	}
	return strings.Contains(string(head), noResultsPhrase)
}

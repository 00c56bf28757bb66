package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const captionTracksMarker = `"captionTracks":`

// languageVariants maps a preferred language to the caption track codes that
// satisfy it, in preference order.
var languageVariants = map[string][]string{
	"ko": {"ko", "ko-KR"},
	"en": {"en", "en-US"},
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
}

type timedTextDoc struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptFetcher retrieves caption text for a video. The primary strategy
// reads the caption track listing off the watch page; the legacy timedtext
// endpoint is consulted only when the primary path fails unexpectedly, since a
// clean "no captions" answer from the watch page is authoritative.
type TranscriptFetcher struct {
	pageClient    *http.Client
	captionClient *http.Client
	watchBase     string
	timedTextBase string
	logger        *zap.Logger
}

func NewTranscriptFetcher(logger *zap.Logger) *TranscriptFetcher {
	return &TranscriptFetcher{
		pageClient:    &http.Client{Timeout: constants.Timeouts.Search},
		captionClient: &http.Client{Timeout: constants.Timeouts.Captions},
		watchBase:     constants.Endpoints.YouTubeWatchURL,
		timedTextBase: constants.Endpoints.TimedTextURL,
		logger:        logger,
	}
}

// Fetch returns a transcript with more than the minimum meaningful length, or
// a typed error. preferredLang is a bare code such as "ko" or "en"; regional
// variants are matched automatically.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID, preferredLang string) (*domain.Transcript, error) {
	if len(videoID) != videoIDLength {
		return nil, scouterrors.NewContentError("invalid video id", videoID)
	}
	if preferredLang == "" {
		preferredLang = "ko"
	}

	transcript, err := f.fromWatchPage(ctx, videoID, preferredLang)
	if err == nil {
		return transcript, nil
	}
	if scouterrors.IsContent(err) {
		// The watch page answered cleanly: captions are off or missing in
		// every acceptable language. No point hitting the legacy endpoint.
		return nil, err
	}

	f.logger.Debug("Watch page caption listing failed, trying timedtext",
		zap.String("videoId", videoID),
		zap.Error(err),
	)

	transcript, secondaryErr := f.fromTimedText(ctx, videoID, preferredLang)
	if secondaryErr == nil {
		return transcript, nil
	}
	if preferredLang != "en" {
		if transcript, retryErr := f.fromTimedText(ctx, videoID, "en"); retryErr == nil {
			return transcript, nil
		}
	}
	return nil, secondaryErr
}

func (f *TranscriptFetcher) fromWatchPage(ctx context.Context, videoID, preferredLang string) (*domain.Transcript, error) {
	tracks, err := f.listCaptionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	order := []string{preferredLang}
	if preferredLang != "en" {
		order = append(order, "en")
	} else {
		order = append(order, "ko")
	}

	for _, lang := range order {
		track := pickTrack(tracks, lang)
		if track == nil {
			continue
		}
		text, err := f.fetchTrack(ctx, track.BaseURL)
		if err != nil {
			return nil, err
		}
		transcript := &domain.Transcript{VideoID: videoID, Text: text, Language: track.LanguageCode}
		if transcript.IsMeaningful(constants.MinTranscriptRunes) {
			return transcript, nil
		}
	}

	return nil, scouterrors.NewContentError("no usable caption track", videoID)
}

func (f *TranscriptFetcher) listCaptionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	watchURL := f.watchBase + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to build watch request", watchURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept-Language", constants.Headers.AcceptLanguage)

	resp, err := f.pageClient.Do(req)
	if err != nil {
		return nil, scouterrors.NewTransportError("watch page request failed", watchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scouterrors.NewTransportError(
			fmt.Sprintf("watch page returned status %d", resp.StatusCode), watchURL, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scouterrors.NewTransportError("failed to read watch page", watchURL, err)
	}
	page := string(body)

	start := strings.Index(page, captionTracksMarker)
	if start == -1 {
		return nil, scouterrors.NewContentError("captions disabled or unavailable", videoID)
	}

	raw, ok := extractJSONArray(page[start+len(captionTracksMarker):])
	if !ok {
		return nil, scouterrors.NewStructureError("malformed caption track listing", watchURL)
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, scouterrors.NewStructureError("failed to parse caption tracks", watchURL)
	}
	return tracks, nil
}

func (f *TranscriptFetcher) fetchTrack(ctx context.Context, baseURL string) (string, error) {
	trackURL := html.UnescapeString(baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to build caption request", trackURL, err)
	}
	req.Header.Set("User-Agent", constants.Headers.UserAgent)
	req.Header.Set("Accept", constants.Headers.AcceptXML)

	resp, err := f.captionClient.Do(req)
	if err != nil {
		return "", scouterrors.NewTransportError("caption request failed", trackURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", scouterrors.NewTransportError(
			fmt.Sprintf("caption endpoint returned status %d", resp.StatusCode), trackURL, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", scouterrors.NewTransportError("failed to read caption body", trackURL, err)
	}
	return parseTimedText(body)
}

// fromTimedText hits the legacy endpoint directly with the requested language.
func (f *TranscriptFetcher) fromTimedText(ctx context.Context, videoID, lang string) (*domain.Transcript, error) {
	endpoint := fmt.Sprintf("%s?v=%s&lang=%s",
		f.timedTextBase, url.QueryEscape(videoID), url.QueryEscape(lang))

	text, err := f.fetchTrack(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	transcript := &domain.Transcript{VideoID: videoID, Text: text, Language: lang}
	if !transcript.IsMeaningful(constants.MinTranscriptRunes) {
		return nil, scouterrors.NewContentError("timedtext transcript too short", videoID)
	}
	return transcript, nil
}

func parseTimedText(body []byte) (string, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", scouterrors.NewStructureError("failed to parse caption xml", "timedtext")
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		value := strings.TrimSpace(html.UnescapeString(t.Value))
		if value != "" {
			parts = append(parts, value)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// extractJSONArray returns the balanced bracket slice starting at the first
// '[' of s. Bracket depth is tracked through string literals and escapes.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func pickTrack(tracks []captionTrack, lang string) *captionTrack {
	variants, ok := languageVariants[lang]
	if !ok {
		variants = []string{lang}
	}
	for _, variant := range variants {
		for i := range tracks {
			if tracks[i].LanguageCode == variant {
				return &tracks[i]
			}
		}
	}
	return nil
}

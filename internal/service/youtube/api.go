package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// APIService provides backup access to the YouTube Data API v3.
// WARNING: this is a BACKUP path due to strict quota limits; the scraping
// discovery stays primary.
type APIService struct {
	service    *yt.Service
	logger     *zap.Logger
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

// NewAPIService creates the backup client with quota management.
func NewAPIService(ctx context.Context, apiKey string, logger *zap.Logger) (*APIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	s := &APIService{
		service:    service,
		logger:     logger,
		quotaReset: nextQuotaReset(),
	}
	logger.Info("YouTube backup service initialized", zap.Time("quotaReset", s.quotaReset))
	return s, nil
}

// nextQuotaReset calculates the next quota reset time (midnight Pacific Time).
func nextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
}

// checkQuota verifies there is enough budget for the operation, auto-resetting
// the counter when a new quota day has started.
func (s *APIService) checkQuota(cost int) error {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	if time.Now().After(s.quotaReset) {
		s.quotaUsed = 0
		s.quotaReset = nextQuotaReset()
		s.logger.Info("YouTube API quota auto-reset", zap.Time("nextReset", s.quotaReset))
	}

	limits := constants.YouTubeAPIQuota
	if s.quotaUsed+cost > limits.DailyLimit-limits.SafetyMargin {
		return &QuotaExceededError{
			Used:      s.quotaUsed,
			Limit:     limits.DailyLimit,
			Requested: cost,
			ResetTime: s.quotaReset,
		}
	}
	return nil
}

func (s *APIService) consumeQuota(cost int) {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	s.quotaUsed += cost
	remaining := constants.YouTubeAPIQuota.DailyLimit - s.quotaUsed

	s.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", s.quotaUsed),
		zap.Int("remaining", remaining))

	if remaining < constants.YouTubeAPIQuota.SafetyMargin {
		s.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", s.quotaReset))
	}
}

// Search runs a search.list call and maps the result rows to candidates in
// API order. Quota is checked before and consumed after the call.
func (s *APIService) Search(ctx context.Context, query string, maxResults int) ([]*domain.MediaCandidate, error) {
	cost := constants.YouTubeAPIQuota.SearchCost
	if err := s.checkQuota(cost); err != nil {
		return nil, err
	}

	call := s.service.Search.List([]string{"snippet"}).
		Context(ctx).
		Q(query).
		Type("video", "channel").
		MaxResults(int64(maxResults))

	resp, err := call.Do()
	if err != nil {
		return nil, scouterrors.NewBackendError("search.list failed", err)
	}
	s.consumeQuota(cost)

	candidates := make([]*domain.MediaCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Snippet == nil {
			continue
		}
		switch {
		case item.Id.VideoId != "":
			candidates = append(candidates, &domain.MediaCandidate{
				Kind:        domain.CandidateVideo,
				URL:         constants.Endpoints.YouTubeWatchURL + item.Id.VideoId,
				ID:          item.Id.VideoId,
				Title:       item.Snippet.Title,
				PublishedAt: item.Snippet.PublishedAt,
				Order:       len(candidates),
			})
		case item.Id.ChannelId != "":
			candidates = append(candidates, &domain.MediaCandidate{
				Kind:  domain.CandidateChannel,
				URL:   constants.Endpoints.YouTubeChannelURL + item.Id.ChannelId,
				ID:    item.Id.ChannelId,
				Title: item.Snippet.Title,
				Order: len(candidates),
			})
		}
	}
	return candidates, nil
}

// QuotaExceededError signals that the daily API budget would be breached.
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d, requested %d, resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}

// Package service orchestrates the scout pipeline: person lookup, video
// discovery, and summarization, each memoized per stable input key with
// at-most-once in-flight execution.
package service

import (
	"context"
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/service/cache"
	"github.com/huhsame/instructor-scout-go/internal/service/youtube"
	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Collaborator contracts, satisfied by the concrete clients in the person,
// youtube, and synopsis packages.
type PersonFinder interface {
	Find(ctx context.Context, name string) (*domain.PersonProfile, error)
}

type Discoverer interface {
	Discover(ctx context.Context, subject domain.Subject) []*domain.MediaCandidate
}

type ChannelResolver interface {
	ChannelLatest(ctx context.Context, channelURL string) (string, error)
}

type TranscriptSource interface {
	Fetch(ctx context.Context, videoID, preferredLang string) (*domain.Transcript, error)
}

type MetadataSource interface {
	Fetch(ctx context.Context, pageURL string) (*youtube.PageMetadata, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (*domain.Synopsis, error)
}

// Scout coordinates the pipeline stages. Stage failures never propagate past
// this layer: a failed lookup degrades to an absent result, logged with its
// error category, so one flaky upstream cannot take the whole response down.
type Scout struct {
	person      PersonFinder
	discovery   Discoverer
	resolver    ChannelResolver
	transcripts TranscriptSource
	metadata    MetadataSource
	generator   Summarizer
	store       cache.Store
	group       singleflight.Group
	lang        string
	logger      *zap.Logger
}

type ScoutDeps struct {
	Person      PersonFinder
	Discovery   Discoverer
	Resolver    ChannelResolver
	Transcripts TranscriptSource
	Metadata    MetadataSource
	Generator   Summarizer
	Store       cache.Store
	Lang        string
}

func NewScout(deps ScoutDeps, logger *zap.Logger) *Scout {
	lang := deps.Lang
	if lang == "" {
		lang = "ko"
	}
	return &Scout{
		person:      deps.Person,
		discovery:   deps.Discovery,
		resolver:    deps.Resolver,
		transcripts: deps.Transcripts,
		metadata:    deps.Metadata,
		generator:   deps.Generator,
		store:       deps.Store,
		lang:        lang,
		logger:      logger,
	}
}

// Cached wrappers distinguish a memoized absent result from a cache miss.
type cachedProfile struct {
	Profile *domain.PersonProfile `json:"profile"`
}

type cachedCandidates struct {
	Candidates []*domain.MediaCandidate `json:"candidates"`
}

type cachedSummary struct {
	Summary *domain.VideoSummary `json:"summary"`
}

// FindPerson returns the person-search profile for a name, or nil when none
// exists. Absence is cached like any other result.
func (s *Scout) FindPerson(ctx context.Context, name string) *domain.PersonProfile {
	key := "person:" + name

	v, _, _ := s.group.Do(key, func() (any, error) {
		var cached cachedProfile
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return cached.Profile, nil
		}

		profile, err := s.person.Find(ctx, name)
		if err != nil {
			s.logAbsent("person search", name, err)
			profile = nil
		}
		s.memoize(ctx, key, cachedProfile{Profile: profile})
		return profile, nil
	})

	profile, _ := v.(*domain.PersonProfile)
	return profile
}

// DiscoverVideos returns the filtered candidate list for a subject. The
// result may be empty (relevance collapse) but is never nil.
func (s *Scout) DiscoverVideos(ctx context.Context, subject domain.Subject) []*domain.MediaCandidate {
	key := "videos:" + subject.CacheKey()

	v, _, _ := s.group.Do(key, func() (any, error) {
		var cached cachedCandidates
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return cached.Candidates, nil
		}

		candidates := s.discovery.Discover(ctx, subject)
		s.memoize(ctx, key, cachedCandidates{Candidates: candidates})
		return candidates, nil
	})

	candidates, _ := v.([]*domain.MediaCandidate)
	if candidates == nil {
		candidates = []*domain.MediaCandidate{}
	}
	return candidates
}

// Enrich runs the person lookup and video discovery in parallel. This is the
// only fan-out in the pipeline; everything downstream is sequential per video.
func (s *Scout) Enrich(ctx context.Context, subject domain.Subject) (*domain.PersonProfile, []*domain.MediaCandidate) {
	var (
		profile    *domain.PersonProfile
		candidates []*domain.MediaCandidate
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		profile = s.FindPerson(ctx, subject.Name)
	})
	wg.Go(func() {
		candidates = s.DiscoverVideos(ctx, subject)
	})
	wg.Wait()

	return profile, candidates
}

// SummarizeVideo builds the full display summary for a selected candidate
// URL. Returns nil for search-fallback URLs and for pages that yielded
// nothing at all; partial results are returned as-is.
func (s *Scout) SummarizeVideo(ctx context.Context, rawURL string) *domain.VideoSummary {
	key := "summary:" + rawURL

	v, _, _ := s.group.Do(key, func() (any, error) {
		var cached cachedSummary
		if found, err := s.store.Get(ctx, key, &cached); err == nil && found {
			return cached.Summary, nil
		}

		summary := s.buildSummary(ctx, rawURL)
		s.memoize(ctx, key, cachedSummary{Summary: summary})
		return summary, nil
	})

	summary, _ := v.(*domain.VideoSummary)
	return summary
}

func (s *Scout) buildSummary(ctx context.Context, rawURL string) *domain.VideoSummary {
	if strings.Contains(rawURL, "/results") {
		// Search fallback candidates point at a results page, not content.
		return nil
	}

	summary := &domain.VideoSummary{}

	meta, err := s.metadata.Fetch(ctx, rawURL)
	if err != nil {
		s.logAbsent("page metadata", rawURL, err)
	} else {
		summary.Title = meta.Title
		summary.Description = meta.Description
		summary.SubscriberCount = meta.SubscriberCount
		summary.VideoCount = meta.VideoCount
		summary.RecentVideos = meta.RecentVideos
	}

	videoID := youtube.ExtractVideoID(rawURL)
	if videoID == "" && youtube.IsChannelURL(rawURL) {
		latest, err := s.resolver.ChannelLatest(ctx, rawURL)
		if err != nil {
			s.logAbsent("channel resolution", rawURL, err)
		} else {
			videoID = latest
		}
	}
	summary.VideoID = videoID

	if videoID != "" {
		transcript, err := s.transcripts.Fetch(ctx, videoID, s.lang)
		if err != nil {
			s.logAbsent("transcript", videoID, err)
		} else {
			syn, err := s.generator.Summarize(ctx, transcript.Text)
			if err != nil {
				s.logAbsent("synopsis", videoID, err)
			} else {
				summary.Synopsis = syn
			}
		}
	}

	if summary.Title == "" && summary.VideoID == "" && summary.Synopsis == nil {
		return nil
	}
	return summary
}

func (s *Scout) memoize(ctx context.Context, key string, value any) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.logger.Debug("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// logAbsent records a stage failure at a severity matching its category:
// expected absences (no results, no captions) at debug, infrastructure
// trouble at warn.
func (s *Scout) logAbsent(stage, subject string, err error) {
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.String("subject", subject),
		zap.String("code", scouterrors.CodeOf(err)),
		zap.Error(err),
	}
	switch {
	case scouterrors.IsContent(err):
		s.logger.Debug("Stage yielded no result", fields...)
	case scouterrors.IsStructure(err):
		s.logger.Warn("Stage hit an unexpected page structure", fields...)
	case scouterrors.IsBackend(err):
		s.logger.Warn("Stage backend unavailable", fields...)
	default:
		s.logger.Warn("Stage failed, continuing without it", fields...)
	}
}

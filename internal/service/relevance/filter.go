// Package relevance scores discovered candidates against the subject's
// identity and topics. The score decides inclusion only; ordering always stays
// with the platform's own ranking.
package relevance

import (
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/util"
)

const (
	scoreNameMatch    = 3
	scoreNameAbsent   = -2
	scoreRoleMatch    = 2
	scoreSecondary    = 2
	scorePrimary      = 1
	scoreEducational  = 1
	scoreOffTopic     = -3
	minTokenRunes     = 2
)

// Filter holds the tuned inclusion thresholds. The defaults are empirically
// tuned values; they are injectable rather than re-derived.
type Filter struct {
	MinScore     int
	MinSurvivors int
}

func NewFilter() *Filter {
	return &Filter{
		MinScore:     constants.RelevanceDefaults.MinScore,
		MinSurvivors: constants.RelevanceDefaults.MinSurvivors,
	}
}

// Apply returns the candidates that score at or above MinScore, in their
// original relative order. Channel and search-fallback candidates pass through
// unconditionally. Each surviving video candidate has its RelevanceScore set
// exactly once here.
func (f *Filter) Apply(candidates []*domain.MediaCandidate, subject domain.Subject) []*domain.MediaCandidate {
	if len(candidates) == 0 {
		return nil
	}

	filtered := make([]*domain.MediaCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if candidate.IsChannel() || candidate.IsSearchFallback() {
			filtered = append(filtered, candidate)
			continue
		}

		score := f.Score(candidate.Title, subject)
		if score >= f.MinScore {
			candidate.RelevanceScore = score
			filtered = append(filtered, candidate)
		}
	}

	return filtered
}

// Score computes the heuristic relevance of one video title.
func (f *Filter) Score(title string, subject domain.Subject) int {
	lowerTitle := strings.ToLower(title)
	score := 0

	// Name presence is the strongest signal, in both directions.
	nameFound := false
	for _, token := range util.Tokens(subject.Name, minTokenRunes) {
		if strings.Contains(lowerTitle, strings.ToLower(token)) {
			score += scoreNameMatch
			nameFound = true
			break
		}
	}
	if !nameFound {
		score += scoreNameAbsent
	}

	if subject.Role != "" {
		lowerRole := strings.ToLower(subject.Role)
		for _, keyword := range constants.RoleScoreKeywords {
			if strings.Contains(lowerRole, keyword) && strings.Contains(lowerTitle, keyword) {
				score += scoreRoleMatch
				break
			}
		}
	}

	if subject.SecondaryTopic != "" {
		for _, token := range util.Tokens(strings.ToLower(subject.SecondaryTopic), minTokenRunes) {
			if strings.Contains(lowerTitle, token) {
				score += scoreSecondary
				break
			}
		}
	}

	// Topics are not double-counted: the primary topic only scores when no
	// secondary topic was supplied.
	if subject.PrimaryTopic != "" && subject.SecondaryTopic == "" {
		for _, token := range util.Tokens(strings.ToLower(subject.PrimaryTopic), minTokenRunes) {
			if strings.Contains(lowerTitle, token) {
				score += scorePrimary
				break
			}
		}
	}

	for _, keyword := range constants.EducationKeywords {
		if strings.Contains(lowerTitle, keyword) {
			score += scoreEducational
			break
		}
	}

	for _, keyword := range constants.OffTopicKeywords {
		if strings.Contains(lowerTitle, keyword) {
			score += scoreOffTopic
			break
		}
	}

	return score
}

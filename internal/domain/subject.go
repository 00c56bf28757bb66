package domain

import "strings"

// Subject identifies who is being searched. Immutable input to the pipeline.
type Subject struct {
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	PrimaryTopic   string `json:"primary_topic,omitempty"`
	SecondaryTopic string `json:"secondary_topic,omitempty"`
}

// HasContext reports whether any disambiguating attribute beyond the bare name
// was supplied. A bare-name lookup skips relevance filtering entirely.
func (s Subject) HasContext() bool {
	return s.Role != "" || s.PrimaryTopic != "" || s.SecondaryTopic != ""
}

// CacheKey builds the documented memoization key: name plus role plus the most
// specific topic, joined with "|".
func (s Subject) CacheKey() string {
	parts := []string{s.Name}
	if s.Role != "" {
		parts = append(parts, s.Role)
	}
	if s.SecondaryTopic != "" {
		parts = append(parts, s.SecondaryTopic)
	} else if s.PrimaryTopic != "" {
		parts = append(parts, s.PrimaryTopic)
	}
	return strings.Join(parts, "|")
}

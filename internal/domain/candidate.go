package domain

type CandidateKind string

const (
	CandidateVideo          CandidateKind = "video"
	CandidateChannel        CandidateKind = "channel"
	CandidateSearchFallback CandidateKind = "search"
)

func (k CandidateKind) IsValid() bool {
	switch k {
	case CandidateVideo, CandidateChannel, CandidateSearchFallback:
		return true
	default:
		return false
	}
}

// MediaCandidate is one discovered video or channel reference, not yet
// confirmed relevant. Identity is URL. Order is the candidate's position in
// the original result stream and is the sole sort key; RelevanceScore is
// assigned exactly once by the relevance filter and used only for inclusion.
type MediaCandidate struct {
	Kind           CandidateKind `json:"kind"`
	URL            string        `json:"url"`
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	PublishedAt    string        `json:"published_at,omitempty"` // free text, videos only
	Order          int           `json:"order"`
	RelevanceScore int           `json:"relevance_score"`
}

func (c *MediaCandidate) IsVideo() bool {
	return c != nil && c.Kind == CandidateVideo
}

func (c *MediaCandidate) IsChannel() bool {
	return c != nil && c.Kind == CandidateChannel
}

func (c *MediaCandidate) IsSearchFallback() bool {
	return c != nil && c.Kind == CandidateSearchFallback
}

// DedupCandidates removes URL duplicates, preserving first-seen order.
func DedupCandidates(candidates []*MediaCandidate) []*MediaCandidate {
	seen := make(map[string]struct{}, len(candidates))
	result := make([]*MediaCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		result = append(result, c)
	}
	return result
}

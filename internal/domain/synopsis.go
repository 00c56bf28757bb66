package domain

// Synopsis is the length-bounded outline summary of a transcript. The raw
// transcript is retained alongside for display.
type Synopsis struct {
	OutlineText   string `json:"outline_text"`
	Length        int    `json:"length"` // rune count of OutlineText
	RawTranscript string `json:"raw_transcript,omitempty"`
	Generated     bool   `json:"generated"` // true when a generative backend produced it
}

// VideoSummary bundles everything the serving layer shows for one selected
// candidate: page metadata, the resolved video id, and the synopsis chain.
type VideoSummary struct {
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	SubscriberCount string   `json:"subscriber_count,omitempty"`
	VideoCount      string   `json:"video_count,omitempty"`
	RecentVideos    []string `json:"recent_videos,omitempty"`
	VideoID         string   `json:"video_id,omitempty"`
	Synopsis        *Synopsis `json:"synopsis,omitempty"`
}

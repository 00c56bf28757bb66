package domain

import "strings"

// Transcript is the spoken text of one resolved video.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// IsMeaningful reports whether the transcript carries enough text to be worth
// keeping. Anything at or under minRunes after trimming is treated as absent.
func (t *Transcript) IsMeaningful(minRunes int) bool {
	if t == nil {
		return false
	}
	return len([]rune(strings.TrimSpace(t.Text))) > minRunes
}

// Package synopsis turns a raw transcript into a readable Korean outline.
// The generative path goes through Gemini with an OpenAI fallback; a
// deterministic extractive strategy guarantees output even with no backend
// configured.
package synopsis

import (
	"regexp"
	"strings"

	"github.com/huhsame/instructor-scout-go/internal/constants"
	"github.com/huhsame/instructor-scout-go/internal/util"
)

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// splitSentences breaks text into sentence chunks, each carrying its own
// terminal punctuation and trailing whitespace so joins reproduce the source.
func splitSentences(s string) []string {
	locs := sentenceEnd.FindAllStringIndex(s, -1)
	out := make([]string, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		out = append(out, s[prev:loc[1]])
		prev = loc[1]
	}
	if prev < len(s) {
		out = append(out, s[prev:])
	}
	return out
}

// Extractive builds a synopsis by whole-sentence accumulation.
//
// Transcripts already inside the target band, or too short to trim, pass
// through unchanged. Longer ones are rebuilt sentence by sentence: stop once
// the minimum is reached, never exceed the maximum mid-sentence.
func Extractive(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	band := constants.SynopsisBand

	length := util.RuneLen(transcript)
	if length <= band.MaxLength {
		return transcript
	}

	sentences := splitSentences(transcript)
	var b strings.Builder
	current := 0
	used := 0
	for _, sentence := range sentences {
		sl := util.RuneLen(sentence)
		if current+sl > band.MaxLength {
			break
		}
		b.WriteString(sentence)
		current += sl
		used++
		if current >= band.MinLength {
			break
		}
	}

	result := strings.TrimSpace(b.String())

	// Backfill when the greedy pass undershot, e.g. a long first sentence
	// followed by short ones.
	if util.RuneLen(result) < band.MinLength {
		for _, sentence := range sentences[used:] {
			if util.RuneLen(result)+util.RuneLen(sentence) > band.MaxLength {
				break
			}
			result += sentence
			used++
		}
		result = strings.TrimSpace(result)
	}

	if result == "" {
		// No sentence boundary fit inside the band at all.
		return util.TruncateRunes(transcript, band.TargetLength)
	}
	if util.RuneLen(result) > band.MaxLength {
		result = util.TruncateRunes(result, band.TargetLength)
	}
	return result
}

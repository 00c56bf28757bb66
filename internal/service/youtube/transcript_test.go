package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	scouterrors "github.com/huhsame/instructor-scout-go/pkg/errors"
	"go.uber.org/zap"
)

const testVideoID = "dQw4w9WgXcQ"

var longCaptionXML = `<?xml version="1.0" encoding="utf-8"?><transcript>` +
	`<text start="0" dur="2">오늘 강의에서는 마케팅 전략의 핵심 개념을 다룹니다.</text>` +
	`<text start="2" dur="2">먼저 시장 세분화와 타기팅의 기본 원리를 살펴보고,</text>` +
	`<text start="4" dur="2">이어서 포지셔닝 사례를 구체적으로 분석하겠습니다.</text>` +
	`</transcript>`

func watchPageWithTracks(tracks string) string {
	return fmt.Sprintf(`<html><body><script>var ytInitialPlayerResponse = {
		"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [%s]}}
	};</script></body></html>`, tracks)
}

func newTestFetcher(watchBase, timedTextBase string) *TranscriptFetcher {
	f := NewTranscriptFetcher(zap.NewNop())
	f.watchBase = watchBase
	f.timedTextBase = timedTextBase
	return f
}

func TestFetchPrefersPreferredLanguage(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/caption", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "ko" {
			t.Errorf("fetched wrong track: lang=%s", r.URL.Query().Get("lang"))
		}
		w.Write([]byte(longCaptionXML))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		tracks := fmt.Sprintf(
			`{"baseUrl":"%s/caption?lang=en","languageCode":"en"},{"baseUrl":"%s/caption?lang=ko","languageCode":"ko"}`,
			srv.URL, srv.URL)
		w.Write([]byte(watchPageWithTracks(tracks)))
	})

	f := newTestFetcher(srv.URL+"/watch?v=", srv.URL+"/timedtext")
	transcript, err := f.Fetch(context.Background(), testVideoID, "ko")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if transcript.Language != "ko" {
		t.Errorf("Language = %q, want ko", transcript.Language)
	}
	if !strings.Contains(transcript.Text, "마케팅 전략") {
		t.Errorf("caption text not joined properly: %q", transcript.Text)
	}
}

func TestFetchFallsBackToEnglishTrack(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/caption", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(longCaptionXML))
	})
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		tracks := fmt.Sprintf(`{"baseUrl":"%s/caption","languageCode":"en-US"}`, srv.URL)
		w.Write([]byte(watchPageWithTracks(tracks)))
	})

	f := newTestFetcher(srv.URL+"/watch?v=", srv.URL+"/timedtext")
	transcript, err := f.Fetch(context.Background(), testVideoID, "ko")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if transcript.Language != "en-US" {
		t.Errorf("Language = %q, want en-US", transcript.Language)
	}
}

func TestFetchNoCaptionsSkipsSecondary(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>no captions on this page</body></html>"))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		t.Error("timedtext must not be consulted when the watch page cleanly reports no captions")
	})

	f := newTestFetcher(srv.URL+"/watch?v=", srv.URL+"/timedtext")
	_, err := f.Fetch(context.Background(), testVideoID, "ko")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !scouterrors.IsContent(err) {
		t.Errorf("missing captions must be a content error, got %v", err)
	}
}

func TestFetchTimedTextSecondary(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		// An unexpected failure, not a clean no-captions answer.
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != testVideoID {
			t.Errorf("timedtext called with v=%s", r.URL.Query().Get("v"))
		}
		w.Write([]byte(longCaptionXML))
	})

	f := newTestFetcher(srv.URL+"/watch?v=", srv.URL+"/timedtext")
	transcript, err := f.Fetch(context.Background(), testVideoID, "ko")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if transcript.Language != "ko" {
		t.Errorf("Language = %q, want ko", transcript.Language)
	}
}

func TestFetchRejectsInvalidVideoID(t *testing.T) {
	f := NewTranscriptFetcher(zap.NewNop())
	if _, err := f.Fetch(context.Background(), "short", "ko"); err == nil {
		t.Fatal("expected an error for a malformed video id")
	}
}

func TestExtractJSONArray(t *testing.T) {
	raw := `[{"a":"tricky ] bracket"},{"b":2}] trailing`
	got, ok := extractJSONArray(raw)
	if !ok {
		t.Fatal("extraction failed")
	}
	if got != `[{"a":"tricky ] bracket"},{"b":2}]` {
		t.Errorf("extractJSONArray = %q", got)
	}
}

package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv", ""},
		{"https://www.youtube.com/channel/UCabcdefghijklmnopqrstuv/videos", ""},
		{"https://www.youtube.com/@handle/featured", ""},
		{"https://www.youtube.com/user/legacyname123", ""},
		{"not a url", ""},
		{"", ""},
		// wrong length never passes
		{"https://www.youtube.com/watch?v=short", ""},
	}

	for _, tc := range cases {
		if got := ExtractVideoID(tc.input); got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestExtractVideoIDIdempotent(t *testing.T) {
	first := ExtractVideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if first == "" {
		t.Fatal("first extraction failed")
	}
	if second := ExtractVideoID(first); second != first {
		t.Errorf("re-extraction changed the id: %q -> %q", first, second)
	}
}

func TestIsChannelURL(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/channel/UCabc", true},
		{"https://www.youtube.com/c/somename", true},
		{"https://www.youtube.com/@handle", true},
		{"https://www.youtube.com/user/legacy", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
	}
	for _, tc := range cases {
		if got := IsChannelURL(tc.input); got != tc.want {
			t.Errorf("IsChannelURL(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestChannelLatestFromScript(t *testing.T) {
	page := `<html><head><script>
		var ytInitialData = {"videoId":"dQw4w9WgXcQ","other":"x"};
	</script></head><body></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	resolver := NewResolver(zap.NewNop())
	got, err := resolver.ChannelLatest(context.Background(), srv.URL+"/@handle")
	if err != nil {
		t.Fatalf("ChannelLatest failed: %v", err)
	}
	if got != "dQw4w9WgXcQ" {
		t.Errorf("ChannelLatest = %q, want dQw4w9WgXcQ", got)
	}
}

func TestChannelLatestPageWideFallback(t *testing.T) {
	// The id appears outside any script tag, so only the page-wide scan finds it.
	page := `<html><body><div data-x='"videoId":"abcdefghijk"'></div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	resolver := NewResolver(zap.NewNop())
	got, err := resolver.ChannelLatest(context.Background(), srv.URL+"/channel/UCx")
	if err != nil {
		t.Fatalf("ChannelLatest failed: %v", err)
	}
	if got != "abcdefghijk" {
		t.Errorf("ChannelLatest = %q, want abcdefghijk", got)
	}
}

func TestChannelLatestNoVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>empty</body></html>"))
	}))
	defer srv.Close()

	resolver := NewResolver(zap.NewNop())
	if _, err := resolver.ChannelLatest(context.Background(), srv.URL+"/channel/UCx"); err == nil {
		t.Fatal("expected an error for a listing without videos")
	}
}

func TestNormalizeListingURL(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://www.youtube.com/@handle", "https://www.youtube.com/@handle/videos"},
		{"https://www.youtube.com/@handle/", "https://www.youtube.com/@handle/videos"},
		{"https://www.youtube.com/@handle/videos", "https://www.youtube.com/@handle/videos"},
	}
	for _, tc := range cases {
		if got := normalizeListingURL(tc.input); got != tc.want {
			t.Errorf("normalizeListingURL(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

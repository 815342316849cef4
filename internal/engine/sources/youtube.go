package sources

import (
	"regexp"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

// YouTube implementation is split across four files by responsibility:
//   youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go — transcript fetching (watch-page scrape + engagement panel
//                           + ANDROID player fallback)
//   youtube_search.go     — keyword search (Data API v3 with paging + ytInitialData scraping)
//   youtube_details.go    — per-video statistics/snippet/duration lookup

// Client calls YouTube endpoints with an injected engine configuration.
type Client struct {
	cfg *engine.Config
}

// New returns a YouTube client using the given configuration.
func New(cfg *engine.Config) *Client {
	return &Client{cfg: cfg}
}

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format
// (watch, youtu.be, embed, /v/).
func ExtractVideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// WatchURL builds the canonical watch URL for a video ID. This is the
// table's uniqueness key, so the form must never vary.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

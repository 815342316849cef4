package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, built in main and injected into
// stage constructors. There is deliberately no package-level config state:
// every consumer receives the struct it needs.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	TitleFilters          []string // keep only videos whose title contains one of these
	TranscriptLangs       []string // preferred caption languages, in order
	SearchInterval        time.Duration
	LLMInterval           time.Duration
	HTTPClient            *http.Client
	LLMClient             *llm.Client
}

// DefaultTranscriptLangs is the caption language preference used when none
// is configured.
var DefaultTranscriptLangs = []string{"en-US", "en"}

// Langs returns the configured transcript languages, falling back to the default.
func (c *Config) Langs() []string {
	if len(c.TranscriptLangs) == 0 {
		return DefaultTranscriptLangs
	}
	return c.TranscriptLangs
}

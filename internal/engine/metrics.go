package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across a run.
var metrics struct {
	SearchRequests     atomic.Int64
	DetailRequests     atomic.Int64
	TranscriptRequests atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"detail_requests":     metrics.DetailRequests.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"cache_hits":          metrics.CacheHits.Load(),
		"cache_misses":        metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns counters as a simple text block for end-of-run logging.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "detail_requests", "transcript_requests",
		"llm_calls", "llm_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and store/ sub-packages.
func IncrSearchRequests()     { metrics.SearchRequests.Add(1) }
func IncrDetailRequests()     { metrics.DetailRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrCacheHits()          { metrics.CacheHits.Add(1) }
func IncrCacheMisses()        { metrics.CacheMisses.Add(1) }

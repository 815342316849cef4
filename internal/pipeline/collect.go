package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_vidminer/internal/dataset"
	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

const searchPageSize = 50 // Data API maximum per request

// CollectOpts configures one collect run.
type CollectOpts struct {
	Keywords      []string
	MaxPerKeyword int
	QuotaLimit    int // stop all keywords once this many records are collected (0 = no limit)
	Output        string
}

// Collector searches for keyword-matched videos, fetches their details, and
// merges them into the video table.
type Collector struct {
	cfg     *engine.Config
	src     VideoSource
	limiter *rate.Limiter
}

// NewCollector builds a collector. Search pages are paced by
// cfg.SearchInterval (default one second, matching API rate expectations).
func NewCollector(cfg *engine.Config, src VideoSource) *Collector {
	interval := cfg.SearchInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Collector{
		cfg:     cfg,
		src:     src,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run collects new records for every keyword and merges them into the table
// at opts.Output. Per-keyword API failures are reported as outcomes; only
// the final table write can fail the run.
func (c *Collector) Run(ctx context.Context, opts CollectOpts) (dataset.MergeStats, []Outcome, error) {
	var collected []dataset.Record
	var outcomes []Outcome

	for _, keyword := range opts.Keywords {
		slog.Info("collect: searching", slog.String("keyword", keyword))
		records, outs := c.collectKeyword(ctx, keyword, opts.MaxPerKeyword)
		collected = append(collected, records...)
		outcomes = append(outcomes, outs...)
		slog.Info("collect: keyword done",
			slog.String("keyword", keyword), slog.Int("found", len(records)))

		if opts.QuotaLimit > 0 && len(collected) >= opts.QuotaLimit {
			slog.Warn("collect: approaching quota limit, stopping search",
				slog.Int("collected", len(collected)))
			break
		}
	}

	stats, err := dataset.MergeFile(opts.Output, collected)
	if err != nil {
		return stats, outcomes, err
	}
	return stats, outcomes, nil
}

// collectKeyword pages through search results for one keyword until
// maxResults records pass the title filter and detail lookup.
func (c *Collector) collectKeyword(ctx context.Context, keyword string, maxResults int) ([]dataset.Record, []Outcome) {
	var records []dataset.Record
	var outcomes []Outcome
	pageToken := ""

	for len(records) < maxResults {
		if err := c.limiter.Wait(ctx); err != nil {
			outcomes = append(outcomes, failed(keyword, err))
			break
		}

		items, next, err := c.src.Search(ctx, keyword, pageToken, searchPageSize)
		if err != nil {
			slog.Error("collect: search failed",
				slog.String("keyword", keyword), slog.Any("err", err))
			outcomes = append(outcomes, failed(keyword, err))
			break
		}

		for _, item := range items {
			if len(records) >= maxResults {
				break
			}
			if !c.matchesTitle(item.Title) {
				outcomes = append(outcomes, skipped(item.ID, "title filter"))
				continue
			}
			details, err := c.src.VideoDetails(ctx, item.ID)
			if err != nil {
				slog.Warn("collect: detail lookup failed",
					slog.String("id", item.ID), slog.Any("err", err))
				outcomes = append(outcomes, failed(item.ID, err))
				continue
			}
			records = append(records, dataset.Record{
				Title:        item.Title,
				URL:          item.URL,
				Keyword:      keyword,
				CommentCount: details.CommentCount,
				LikeCount:    details.LikeCount,
				ViewCount:    details.ViewCount,
				Duration:     details.Duration,
				Description:  details.Description,
				Tags:         details.Tags,
				CategoryID:   details.CategoryID,
			})
			outcomes = append(outcomes, succeeded(item.ID))
		}

		if next == "" || len(records) >= maxResults {
			break
		}
		pageToken = next
	}
	return records, outcomes
}

// matchesTitle reports whether a video title passes the configured filter
// terms. No filters means everything passes.
func (c *Collector) matchesTitle(title string) bool {
	if len(c.cfg.TitleFilters) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, term := range c.cfg.TitleFilters {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

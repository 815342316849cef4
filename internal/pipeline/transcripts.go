package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/anatolykoptev/go_vidminer/internal/dataset"
	"github.com/anatolykoptev/go_vidminer/internal/engine"
	"github.com/anatolykoptev/go_vidminer/internal/engine/sources"
	"github.com/anatolykoptev/go_vidminer/internal/store"
)

// TranscribeOpts configures one transcripts run.
type TranscribeOpts struct {
	Input  string // video table CSV
	Output string // transcripts JSON
}

// Transcriber fetches a transcript per table row and writes the JSON
// document set consumed by the analyze stage.
type Transcriber struct {
	cfg   *engine.Config
	src   VideoSource
	cache *store.TranscriptCache // nil disables caching
}

// NewTranscriber builds a transcriber. Pass a nil cache to always hit the network.
func NewTranscriber(cfg *engine.Config, src VideoSource, cache *store.TranscriptCache) *Transcriber {
	return &Transcriber{cfg: cfg, src: src, cache: cache}
}

// Run loads the video table, fetches transcripts, and writes the document
// set. Videos without an available transcript are skipped and omitted from
// the output, never fatal.
func (t *Transcriber) Run(ctx context.Context, opts TranscribeOpts) ([]Outcome, error) {
	records, err := dataset.Load(opts.Input)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records in %s", opts.Input)
	}

	docs := make([]TranscriptDoc, 0, len(records))
	var outcomes []Outcome
	for _, rec := range records {
		videoID := sources.ExtractVideoID(rec.URL)
		if videoID == "" {
			slog.Warn("transcripts: could not extract video ID", slog.String("url", rec.URL))
			outcomes = append(outcomes, failed(rec.URL, fmt.Errorf("no video ID in %q", rec.URL)))
			continue
		}
		slog.Info("transcripts: processing", slog.Int("video_id", rec.ID), slog.String("id", videoID))

		text, cached := "", false
		if t.cache != nil {
			text, cached = t.cache.Get(ctx, videoID)
		}
		if !cached {
			text, err = t.src.Transcript(ctx, videoID, t.cfg.Langs())
			if err != nil {
				slog.Warn("transcripts: unavailable",
					slog.String("id", videoID), slog.Any("err", err))
				outcomes = append(outcomes, skipped(videoID, "transcript unavailable"))
				continue
			}
			if t.cache != nil {
				t.cache.Put(ctx, videoID, text)
			}
		}
		slog.Debug("transcripts: fetched",
			slog.String("id", videoID), slog.Bool("cached", cached),
			slog.String("preview", engine.TruncateRunes(text, 80, "…")))

		docs = append(docs, TranscriptDoc{
			VideoID:    strconv.Itoa(rec.ID),
			Title:      rec.Title,
			URL:        rec.URL,
			Keyword:    rec.Keyword,
			Transcript: text,
		})
		outcomes = append(outcomes, succeeded(videoID))
	}

	if err := writeTranscriptDocs(opts.Output, docs); err != nil {
		return outcomes, err
	}

	ok, skip, fail := CountByStatus(outcomes)
	slog.Info("transcripts: done",
		slog.String("output", opts.Output),
		slog.Int("written", ok), slog.Int("skipped", skip), slog.Int("failed", fail))
	return outcomes, nil
}

// writeTranscriptDocs serializes the document set as indented JSON with
// unescaped text (transcripts regularly contain quotes and angle brackets).
func writeTranscriptDocs(path string, docs []TranscriptDoc) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode transcripts: %w", err)
	}
	return nil
}

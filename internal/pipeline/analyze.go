package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_vidminer/internal/dataset"
	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

// Sentinel cell values written instead of analysis results.
const (
	SentinelError           = "Error in analysis"
	SentinelShortTranscript = "N/A - Short/No Transcript"
)

// AnalysisHeader is the fixed column list of the analysis table.
var AnalysisHeader = []string{
	"VideoID", "Title", "URL",
	"Electrical Terms", "Problems/Challenges", "Tools/Equipment", "Educational Content",
}

// AnalyzeOpts configures one analyze run.
type AnalyzeOpts struct {
	Input              string // transcripts JSON
	Output             string // analysis CSV, appended to across runs
	StartID            int
	EndID              int // 0 = no upper bound
	MinTranscriptWords int // below this the transcript is not worth analyzing
}

// analyzeFunc is the inference collaborator boundary, injectable in tests.
type analyzeFunc func(ctx context.Context, transcript string) (*engine.Analysis, error)

// Analyzer sends transcripts through the LLM and appends structured rows to
// the analysis table, resuming past already-processed VideoIDs.
type Analyzer struct {
	analyze analyzeFunc
	limiter *rate.Limiter
}

// NewAnalyzer builds an analyzer. Calls are paced by cfg.LLMInterval
// (default 100ms, matching the API's burst tolerance).
func NewAnalyzer(cfg *engine.Config) *Analyzer {
	interval := cfg.LLMInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Analyzer{
		analyze: func(ctx context.Context, transcript string) (*engine.Analysis, error) {
			return engine.AnalyzeTranscript(ctx, cfg, transcript)
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run analyzes every in-range, not-yet-processed transcript. Rows are
// flushed as they are produced so an interrupted run resumes cleanly.
func (a *Analyzer) Run(ctx context.Context, opts AnalyzeOpts) ([]Outcome, error) {
	docs, err := readTranscriptDocs(opts.Input)
	if err != nil {
		return nil, err
	}

	processed, err := readProcessedIDs(opts.Output)
	if err != nil {
		return nil, err
	}
	isNew := !fileExists(opts.Output)

	f, err := os.OpenFile(opts.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(AnalysisHeader); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	var outcomes []Outcome
	for _, doc := range docs {
		id, err := strconv.Atoi(doc.VideoID)
		if err != nil {
			outcomes = append(outcomes, failed(doc.VideoID, fmt.Errorf("bad VideoID: %w", err)))
			continue
		}
		if id < opts.StartID || (opts.EndID > 0 && id > opts.EndID) {
			continue
		}
		if processed[id] {
			slog.Info("analyze: already processed, skipping", slog.Int("video_id", id))
			outcomes = append(outcomes, skipped(doc.VideoID, "already processed"))
			continue
		}

		if len(strings.Fields(doc.Transcript)) < opts.MinTranscriptWords {
			slog.Info("analyze: transcript too short, skipping analysis", slog.Int("video_id", id))
			if err := writeAnalysisRow(w, doc, sentinelAnalysis(SentinelShortTranscript)); err != nil {
				return outcomes, err
			}
			outcomes = append(outcomes, skipped(doc.VideoID, "short or missing transcript"))
			continue
		}

		if err := a.limiter.Wait(ctx); err != nil {
			return outcomes, err
		}
		slog.Info("analyze: processing", slog.Int("video_id", id))
		analysis, err := a.analyze(ctx, doc.Transcript)
		if err != nil {
			slog.Error("analyze: analysis failed", slog.Int("video_id", id), slog.Any("err", err))
			if werr := writeAnalysisRow(w, doc, sentinelAnalysis(SentinelError)); werr != nil {
				return outcomes, werr
			}
			outcomes = append(outcomes, failed(doc.VideoID, err))
			continue
		}

		if err := writeAnalysisRow(w, doc, [4]string{
			engine.JoinItems(analysis.ElectricalTerms),
			engine.JoinItems(analysis.ProblemsChallenges),
			engine.JoinItems(analysis.ToolsEquipment),
			engine.JoinItems(analysis.EducationalContent),
		}); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, succeeded(doc.VideoID))
	}

	ok, skip, fail := CountByStatus(outcomes)
	slog.Info("analyze: done",
		slog.String("output", opts.Output),
		slog.Int("analyzed", ok), slog.Int("skipped", skip), slog.Int("failed", fail))
	return outcomes, nil
}

// sentinelAnalysis fills all four category cells with one sentinel value.
func sentinelAnalysis(sentinel string) [4]string {
	return [4]string{sentinel, sentinel, sentinel, sentinel}
}

// writeAnalysisRow appends one row and flushes immediately, so partial runs
// stay resumable.
func writeAnalysisRow(w *csv.Writer, doc TranscriptDoc, cells [4]string) error {
	row := []string{doc.VideoID, doc.Title, doc.URL, cells[0], cells[1], cells[2], cells[3]}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row %s: %w", doc.VideoID, err)
	}
	w.Flush()
	return w.Error()
}

// readTranscriptDocs loads the transcripts JSON document set.
func readTranscriptDocs(path string) ([]TranscriptDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcripts: %w", err)
	}
	var docs []TranscriptDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse transcripts: %w", err)
	}
	return docs, nil
}

// readProcessedIDs collects the VideoIDs already present in the output, so
// a re-run never re-analyzes (or double-writes) a video.
func readProcessedIDs(path string) (map[int]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[int]bool{}, nil
		}
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return map[int]bool{}, nil
		}
		return nil, fmt.Errorf("read output header: %w", err)
	}
	idCol := -1
	for i, name := range header {
		if dataset.CleanColumnName(name) == "VideoID" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("output %s has no VideoID column", path)
	}

	processed := map[int]bool{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue // malformed rows don't block resume
		}
		if idCol < len(row) {
			if id, err := strconv.Atoi(strings.TrimSpace(row[idCol])); err == nil {
				processed[id] = true
			}
		}
	}
	return processed, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

func writeTranscripts(t *testing.T, docs []TranscriptDoc) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcripts.json")
	data, err := json.Marshal(docs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func newTestAnalyzer(fn analyzeFunc) *Analyzer {
	return &Analyzer{analyze: fn, limiter: rate.NewLimiter(rate.Inf, 0)}
}

const longTranscript = "today we cover breaker panels conduit bending wire gauges " +
	"grounding bonding GFCI outlets and the inspection checklist used on every job site"

func TestAnalyzerWritesRows(t *testing.T) {
	input := writeTranscripts(t, []TranscriptDoc{
		{VideoID: "1", Title: "A", URL: "u1", Transcript: longTranscript},
	})
	output := filepath.Join(t.TempDir(), "analysis.csv")

	a := newTestAnalyzer(func(_ context.Context, _ string) (*engine.Analysis, error) {
		return &engine.Analysis{
			ElectricalTerms:    []string{"breaker", "conduit"},
			ProblemsChallenges: []string{"inspection delays"},
			ToolsEquipment:     []string{"bender"},
			EducationalContent: []string{"wire gauge chart"},
		}, nil
	})
	outcomes, err := a.Run(context.Background(), AnalyzeOpts{
		Input: input, Output: output, MinTranscriptWords: 5,
	})
	require.NoError(t, err)
	ok, _, _ := CountByStatus(outcomes)
	require.Equal(t, 1, ok)

	rows := readCSV(t, output)
	require.Len(t, rows, 2)
	require.Equal(t, AnalysisHeader, rows[0])
	require.Equal(t, []string{"1", "A", "u1", "breaker, conduit", "inspection delays", "bender", "wire gauge chart"}, rows[1])
}

func TestAnalyzerShortTranscriptSentinel(t *testing.T) {
	input := writeTranscripts(t, []TranscriptDoc{
		{VideoID: "1", Title: "A", URL: "u1", Transcript: "too short"},
	})
	output := filepath.Join(t.TempDir(), "analysis.csv")

	a := newTestAnalyzer(func(_ context.Context, _ string) (*engine.Analysis, error) {
		t.Fatal("LLM must not be called for short transcripts")
		return nil, nil
	})
	outcomes, err := a.Run(context.Background(), AnalyzeOpts{
		Input: input, Output: output, MinTranscriptWords: 20,
	})
	require.NoError(t, err)
	_, skip, _ := CountByStatus(outcomes)
	require.Equal(t, 1, skip)

	rows := readCSV(t, output)
	require.Len(t, rows, 2)
	for _, cell := range rows[1][3:] {
		require.Equal(t, SentinelShortTranscript, cell)
	}
}

func TestAnalyzerErrorSentinelAndContinue(t *testing.T) {
	input := writeTranscripts(t, []TranscriptDoc{
		{VideoID: "1", Title: "A", URL: "u1", Transcript: longTranscript},
		{VideoID: "2", Title: "B", URL: "u2", Transcript: longTranscript},
	})
	output := filepath.Join(t.TempDir(), "analysis.csv")

	a := newTestAnalyzer(func(_ context.Context, transcript string) (*engine.Analysis, error) {
		return nil, errors.New("model overloaded")
	})
	outcomes, err := a.Run(context.Background(), AnalyzeOpts{
		Input: input, Output: output, MinTranscriptWords: 5,
	})
	require.NoError(t, err, "per-record LLM failures are not fatal")
	_, _, fail := CountByStatus(outcomes)
	require.Equal(t, 2, fail)

	rows := readCSV(t, output)
	require.Len(t, rows, 3)
	require.Equal(t, SentinelError, rows[1][3])
	require.Equal(t, SentinelError, rows[2][3])
}

func TestAnalyzerResumeSkipsProcessed(t *testing.T) {
	input := writeTranscripts(t, []TranscriptDoc{
		{VideoID: "1", Title: "A", URL: "u1", Transcript: longTranscript},
		{VideoID: "2", Title: "B", URL: "u2", Transcript: longTranscript},
	})
	output := filepath.Join(t.TempDir(), "analysis.csv")

	calls := 0
	a := newTestAnalyzer(func(_ context.Context, _ string) (*engine.Analysis, error) {
		calls++
		return &engine.Analysis{ElectricalTerms: []string{"x"}}, nil
	})
	opts := AnalyzeOpts{Input: input, Output: output, MinTranscriptWords: 5, EndID: 1}

	_, err := a.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// Second run with the full range: only video 2 is new.
	opts.EndID = 0
	outcomes, err := a.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	ok, skip, _ := CountByStatus(outcomes)
	require.Equal(t, 1, ok)
	require.Equal(t, 1, skip)

	rows := readCSV(t, output)
	require.Len(t, rows, 3, "header written once, one row per video")
	require.Equal(t, "1", rows[1][0])
	require.Equal(t, "2", rows[2][0])
}

func TestAnalyzerIDRange(t *testing.T) {
	input := writeTranscripts(t, []TranscriptDoc{
		{VideoID: "1", Title: "A", URL: "u1", Transcript: longTranscript},
		{VideoID: "5", Title: "B", URL: "u5", Transcript: longTranscript},
		{VideoID: "9", Title: "C", URL: "u9", Transcript: longTranscript},
	})
	output := filepath.Join(t.TempDir(), "analysis.csv")

	a := newTestAnalyzer(func(_ context.Context, _ string) (*engine.Analysis, error) {
		return &engine.Analysis{}, nil
	})
	outcomes, err := a.Run(context.Background(), AnalyzeOpts{
		Input: input, Output: output, StartID: 2, EndID: 8, MinTranscriptWords: 5,
	})
	require.NoError(t, err)
	ok, _, _ := CountByStatus(outcomes)
	require.Equal(t, 1, ok)

	rows := readCSV(t, output)
	require.Len(t, rows, 2)
	require.Equal(t, "5", rows[1][0])
}

package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_vidminer/internal/dataset"
	"github.com/anatolykoptev/go_vidminer/internal/engine"
	"github.com/anatolykoptev/go_vidminer/internal/store"
)

func writeVideoTable(t *testing.T, records []dataset.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videos.csv")
	require.NoError(t, dataset.Write(path, records))
	return path
}

func TestTranscriberSkipsUnavailable(t *testing.T) {
	src := &fakeSource{
		transcripts: map[string]string{
			"aaaaaaaaaaa": "wiring a panel starts with the main breaker",
		},
	}
	input := writeVideoTable(t, []dataset.Record{
		{ID: 1, Title: "A", URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa", Keyword: "kw"},
		{ID: 2, Title: "B", URL: "https://www.youtube.com/watch?v=bbbbbbbbbbb", Keyword: "kw"},
	})
	output := filepath.Join(t.TempDir(), "transcripts.json")

	tr := NewTranscriber(&engine.Config{}, src, nil)
	outcomes, err := tr.Run(context.Background(), TranscribeOpts{Input: input, Output: output})
	require.NoError(t, err)

	ok, skip, fail := CountByStatus(outcomes)
	require.Equal(t, 1, ok)
	require.Equal(t, 1, skip)
	require.Equal(t, 0, fail)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var docs []TranscriptDoc
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 1)
	require.Equal(t, "1", docs[0].VideoID)
	require.Equal(t, "kw", docs[0].Keyword)
	require.Contains(t, docs[0].Transcript, "main breaker")
}

func TestTranscriberBadURL(t *testing.T) {
	src := &fakeSource{transcripts: map[string]string{}}
	input := writeVideoTable(t, []dataset.Record{
		{ID: 1, Title: "A", URL: "https://example.com/not-a-video", Keyword: "kw"},
	})
	output := filepath.Join(t.TempDir(), "transcripts.json")

	tr := NewTranscriber(&engine.Config{}, src, nil)
	outcomes, err := tr.Run(context.Background(), TranscribeOpts{Input: input, Output: output})
	require.NoError(t, err)

	_, _, fail := CountByStatus(outcomes)
	require.Equal(t, 1, fail)
}

func TestTranscriberEmptyInputFails(t *testing.T) {
	input := filepath.Join(t.TempDir(), "missing.csv")
	output := filepath.Join(t.TempDir(), "transcripts.json")

	tr := NewTranscriber(&engine.Config{}, &fakeSource{}, nil)
	_, err := tr.Run(context.Background(), TranscribeOpts{Input: input, Output: output})
	require.Error(t, err)
}

type countingSource struct {
	fakeSource
	transcriptCalls int
}

func (c *countingSource) Transcript(ctx context.Context, videoID string, langs []string) (string, error) {
	c.transcriptCalls++
	return c.fakeSource.Transcript(ctx, videoID, langs)
}

func TestTranscriberUsesCache(t *testing.T) {
	src := &countingSource{fakeSource: fakeSource{
		transcripts: map[string]string{"aaaaaaaaaaa": "conduit bending basics"},
	}}
	cache, err := store.OpenTranscriptCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	input := writeVideoTable(t, []dataset.Record{
		{ID: 1, Title: "A", URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa", Keyword: "kw"},
	})
	dir := t.TempDir()

	tr := NewTranscriber(&engine.Config{}, src, cache)
	_, err = tr.Run(context.Background(), TranscribeOpts{Input: input, Output: filepath.Join(dir, "t1.json")})
	require.NoError(t, err)
	_, err = tr.Run(context.Background(), TranscribeOpts{Input: input, Output: filepath.Join(dir, "t2.json")})
	require.NoError(t, err)

	require.Equal(t, 1, src.transcriptCalls, "second run should be served from cache")
}

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(title, url, keyword string, views int) Record {
	return Record{Title: title, URL: url, Keyword: keyword, ViewCount: views}
}

func TestMergeLastWinsFirstSeenPosition(t *testing.T) {
	// Existing table holds u1 with 10 views. The new batch re-finds u1
	// (now 20 views) and finds u2. u1 keeps position 1 but carries the
	// newer counters; u2 is appended.
	existing := []Record{rec("T1", "u1", "k1", 10)}
	incoming := []Record{
		rec("T1", "u1", "k1", 20),
		rec("T2", "u2", "k1", 5),
	}

	merged, stats := Merge(existing, incoming)

	require.Len(t, merged, 2)
	assert.Equal(t, "u1", merged[0].URL)
	assert.Equal(t, 20, merged[0].ViewCount, "later occurrence must win")
	assert.Equal(t, "u2", merged[1].URL)
	assert.Equal(t, 1, merged[0].ID)
	assert.Equal(t, 2, merged[1].ID)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 2, stats.Total)
}

func TestMergeDuplicatesWithinIncoming(t *testing.T) {
	// The same video found under two keywords: the later keyword wins.
	incoming := []Record{
		rec("T", "u1", "conduit install", 1),
		rec("T", "u1", "commercial electrical", 1),
	}

	merged, stats := Merge(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "commercial electrical", merged[0].Keyword)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestMergeRejectsMissingKey(t *testing.T) {
	incoming := []Record{
		rec("no key", "", "k", 1),
		rec("ok", "u1", "k", 1),
	}

	merged, stats := Merge(nil, incoming)

	require.Len(t, merged, 1)
	assert.Equal(t, "u1", merged[0].URL)
	assert.Equal(t, 1, stats.Rejected)
}

func TestMergeFileNonexistentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.csv")
	incoming := []Record{
		rec("A", "u1", "k", 1),
		rec("B", "u2", "k", 2),
		rec("A again", "u1", "k", 3),
	}

	stats, err := MergeFile(path, incoming)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Duplicates)

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A again", got[0].Title)
	assert.Equal(t, []int{1, 2}, []int{got[0].ID, got[1].ID})
}

func TestMergeFileIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.csv")
	incoming := []Record{rec("A", "u1", "k", 7), rec("B", "u2", "k", 9)}

	_, err := MergeFile(path, incoming)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Merging an empty batch must reproduce the file byte for byte.
	_, err = MergeFile(path, nil)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestMergeFileHeaderStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.csv")

	_, err := MergeFile(path, []Record{rec("A", "u1", "k", 1)})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	header1 := strings.SplitN(string(data), "\n", 2)[0]

	_, err = MergeFile(path, []Record{rec("B", "u2", "k", 2)})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	header2 := strings.SplitN(string(data), "\n", 2)[0]

	assert.Equal(t, header1, header2)
	assert.Equal(t, "VideoID,Title,URL,Keyword,Comment Count,Like Count,View Count,Duration,Description,Tags,Category ID", header1)
}

func TestMergeRenumbersAfterDedup(t *testing.T) {
	existing := []Record{
		{ID: 1, Title: "A", URL: "u1"},
		{ID: 2, Title: "B", URL: "u2"},
		{ID: 3, Title: "C", URL: "u3"},
	}
	// u2 is superseded; identifiers stay dense 1..N.
	merged, _ := Merge(existing, []Record{rec("B2", "u2", "k", 0)})

	require.Len(t, merged, 3)
	for i, r := range merged {
		assert.Equal(t, i+1, r.ID)
	}
	assert.Equal(t, "B2", merged[1].Title)
}

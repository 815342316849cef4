// Package store provides the local transcript cache. The cache is an
// optimization only: failures are logged and treated as misses.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	video_id   TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// TranscriptCache persists fetched transcripts keyed by video ID so repeated
// runs against the same table skip the network.
type TranscriptCache struct {
	db *sql.DB
}

// OpenTranscriptCache opens (and if necessary creates) the cache at path.
func OpenTranscriptCache(path string) (*TranscriptCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open transcript cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init transcript cache: %w", err)
	}
	return &TranscriptCache{db: db}, nil
}

// Get returns the cached transcript for a video ID, if present.
func (c *TranscriptCache) Get(ctx context.Context, videoID string) (string, bool) {
	var text string
	err := c.db.QueryRowContext(ctx,
		`SELECT text FROM transcripts WHERE video_id = ?`, videoID).Scan(&text)
	switch {
	case err == sql.ErrNoRows:
		engine.IncrCacheMisses()
		return "", false
	case err != nil:
		slog.Warn("transcript cache read failed", slog.String("id", videoID), slog.Any("err", err))
		engine.IncrCacheMisses()
		return "", false
	}
	engine.IncrCacheHits()
	return text, true
}

// Put stores a transcript, replacing any previous entry for the video ID.
func (c *TranscriptCache) Put(ctx context.Context, videoID, text string) {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO transcripts (video_id, text) VALUES (?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET text = excluded.text, fetched_at = CURRENT_TIMESTAMP`,
		videoID, text)
	if err != nil {
		slog.Warn("transcript cache write failed", slog.String("id", videoID), slog.Any("err", err))
	}
}

// Close releases the underlying database handle.
func (c *TranscriptCache) Close() error {
	return c.db.Close()
}

package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestTranscriptCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenTranscriptCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get(ctx, "abcdefghijk"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put(ctx, "abcdefghijk", "hello transcript")
	got, ok := cache.Get(ctx, "abcdefghijk")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got != "hello transcript" {
		t.Errorf("got %q", got)
	}

	// Put replaces the previous entry.
	cache.Put(ctx, "abcdefghijk", "updated")
	got, ok = cache.Get(ctx, "abcdefghijk")
	if !ok || got != "updated" {
		t.Errorf("got %q ok=%v, want updated entry", got, ok)
	}
}

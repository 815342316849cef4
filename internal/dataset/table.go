// Package dataset owns the persisted video table: a fixed-schema CSV keyed
// by video URL, fully rewritten on every merge.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Header is the fixed column list of the video table. Field order is part of
// the schema and must be reproduced byte-identically on every write.
var Header = []string{
	"VideoID", "Title", "URL", "Keyword",
	"Comment Count", "Like Count", "View Count",
	"Duration", "Description", "Tags", "Category ID",
}

// Record is one row of the video table. URL is the uniqueness key; ID is a
// positional 1-based identifier assigned at write time, not a durable key.
type Record struct {
	ID           int
	Title        string
	URL          string
	Keyword      string
	CommentCount int
	LikeCount    int
	ViewCount    int
	Duration     string
	Description  string
	Tags         string
	CategoryID   string
}

// Key returns the record's uniqueness key.
func (r Record) Key() string {
	return r.URL
}

// CleanColumnName strips non-printable runes (including a UTF-8 BOM) and
// surrounding whitespace from a header cell. Previously-corrupted files have
// shipped headers with embedded control characters.
func CleanColumnName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Load reads the table at path. A missing file is an empty table. Rows that
// lack the URL key are skipped with a diagnostic; missing numeric fields
// parse as 0 and missing text fields as empty strings.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows, validate per field below

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[CleanColumnName(name)] = i
	}
	if _, ok := cols["URL"]; !ok {
		return nil, fmt.Errorf("table %s has no URL column", path)
	}

	var records []Record
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			slog.Warn("dataset: skipping malformed row", slog.Int("line", line), slog.Any("err", err))
			continue
		}
		url := cell(row, cols, "URL")
		if url == "" {
			slog.Warn("dataset: skipping row without URL key", slog.Int("line", line))
			continue
		}
		records = append(records, Record{
			ID:           atoiDefault(cell(row, cols, "VideoID")),
			Title:        cell(row, cols, "Title"),
			URL:          url,
			Keyword:      cell(row, cols, "Keyword"), // may not exist in old format
			CommentCount: atoiDefault(cell(row, cols, "Comment Count")),
			LikeCount:    atoiDefault(cell(row, cols, "Like Count")),
			ViewCount:    atoiDefault(cell(row, cols, "View Count")),
			Duration:     cell(row, cols, "Duration"),
			Description:  cell(row, cols, "Description"),
			Tags:         cell(row, cols, "Tags"),
			CategoryID:   cell(row, cols, "Category ID"),
		})
	}
	return records, nil
}

// Write rewrites the full table at path: fixed header, one line per record,
// integers in decimal, UTF-8.
func Write(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.ID),
			rec.Title,
			rec.URL,
			rec.Keyword,
			strconv.Itoa(rec.CommentCount),
			strconv.Itoa(rec.LikeCount),
			strconv.Itoa(rec.ViewCount),
			rec.Duration,
			rec.Description,
			rec.Tags,
			rec.CategoryID,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// cell returns the named column of a row, or "" if the column is absent or
// the row is too short.
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func atoiDefault(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

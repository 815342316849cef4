package dataset

import "log/slog"

// MergeStats summarizes one merge run for observability.
type MergeStats struct {
	Total      int // records written
	Duplicates int // records removed by key collision
	Rejected   int // records dropped for a missing key (caller contract violation)
}

// Merge concatenates existing and incoming records and deduplicates them by
// key with an insertion-ordered map: the LAST occurrence of a key wins the
// record value, but the FIRST occurrence fixes its position in the output.
// A new record therefore always overrides a previously collected one without
// reshuffling the table. Records without a key are rejected, not merged.
// The result is renumbered 1..N in output order.
func Merge(existing, incoming []Record) ([]Record, MergeStats) {
	var stats MergeStats
	position := make(map[string]int)
	merged := make([]Record, 0, len(existing)+len(incoming))

	combined := make([]Record, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)

	for _, rec := range combined {
		key := rec.Key()
		if key == "" {
			stats.Rejected++
			slog.Warn("dataset: rejecting record without key", slog.String("title", rec.Title))
			continue
		}
		if i, seen := position[key]; seen {
			merged[i] = rec
			stats.Duplicates++
			continue
		}
		position[key] = len(merged)
		merged = append(merged, rec)
	}

	for i := range merged {
		merged[i].ID = i + 1
	}
	stats.Total = len(merged)
	return merged, stats
}

// MergeFile loads the table at path (missing file = empty table), merges the
// incoming records into it, and rewrites the full table. Merging an empty
// batch reproduces the table unchanged apart from renumbering.
func MergeFile(path string, incoming []Record) (MergeStats, error) {
	existing, err := Load(path)
	if err != nil {
		return MergeStats{}, err
	}

	merged, stats := Merge(existing, incoming)
	if err := Write(path, merged); err != nil {
		return stats, err
	}

	slog.Info("dataset: table updated",
		slog.String("path", path),
		slog.Int("total", stats.Total),
		slog.Int("duplicates_removed", stats.Duplicates),
		slog.Int("rejected", stats.Rejected),
	)
	return stats, nil
}

// Package pipeline contains the four batch stages: collect, transcripts,
// analyze, and explode. Stages never abort on a single bad record; every
// record produces an Outcome and only I/O-level failures are fatal.
package pipeline

import (
	"context"

	"github.com/anatolykoptev/go_vidminer/internal/engine"
)

// Status classifies what happened to one record in a stage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the per-record result of a stage run.
type Outcome struct {
	Ref    string // video ID, URL, or keyword the outcome refers to
	Status Status
	Reason string // set for StatusSkipped
	Err    error  // set for StatusFailed
}

func succeeded(ref string) Outcome {
	return Outcome{Ref: ref, Status: StatusOK}
}

func skipped(ref, reason string) Outcome {
	return Outcome{Ref: ref, Status: StatusSkipped, Reason: reason}
}

func failed(ref string, err error) Outcome {
	return Outcome{Ref: ref, Status: StatusFailed, Err: err}
}

// CountByStatus tallies outcomes for stage summary logging.
func CountByStatus(outcomes []Outcome) (ok, skip, fail int) {
	for _, o := range outcomes {
		switch o.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skip++
		case StatusFailed:
			fail++
		}
	}
	return
}

// VideoSource is the collection collaborator boundary; *sources.Client
// implements it.
type VideoSource interface {
	Search(ctx context.Context, query, pageToken string, limit int) ([]engine.SearchItem, string, error)
	VideoDetails(ctx context.Context, videoID string) (*engine.VideoDetails, error)
	Transcript(ctx context.Context, videoID string, langs []string) (string, error)
}

// TranscriptDoc is one entry of the transcripts JSON document set, the
// hand-off between the transcripts and analyze stages.
type TranscriptDoc struct {
	VideoID    string `json:"VideoID"`
	Title      string `json:"Title"`
	URL        string `json:"URL"`
	Keyword    string `json:"Keyword"`
	Transcript string `json:"Transcript"`
}

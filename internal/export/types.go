package export

import (
	"context"
	"io"

	"github.com/vidsplit/vidsplit/internal/timeline"
)

// Style defaults applied when the caller leaves a field empty.
const (
	DefaultTitle           = "Sprunki"
	DefaultBackgroundColor = "#FFD700"
	DefaultTextColor       = "#FFFFFF"
)

// Style is the overlay configuration shared by every segment of one
// export.
type Style struct {
	Title           string
	BackgroundColor string
	TextColor       string
}

func (s Style) withDefaults() Style {
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackgroundColor
	}
	if s.TextColor == "" {
		s.TextColor = DefaultTextColor
	}
	return s
}

// Input is one export invocation: one source video, the ordered
// segment snapshot, and the overlay style. The segment list is a
// by-value snapshot; the pipeline never mutates the caller's timeline.
type Input struct {
	Video    io.Reader
	Segments []timeline.Span
	Style    Style

	// SessionID tags the job record when the export came from an
	// editing session. Optional.
	SessionID string
}

// Artifact is the address of one completed segment output.
type Artifact struct {
	SegmentIndex int    `json:"segment_index"`
	FileName     string `json:"file_name"`
	Path         string `json:"path"`
	URL          string `json:"url"`
	MirrorURL    string `json:"mirror_url,omitempty"`
}

// Result is the outcome of a fully successful export: the artifact
// list is index-aligned with the input segment order.
type Result struct {
	JobID     string
	Artifacts []Artifact
}

// URLs returns the artifact URLs in segment order.
func (r *Result) URLs() []string {
	urls := make([]string, len(r.Artifacts))
	for i, a := range r.Artifacts {
		urls[i] = a.URL
	}
	return urls
}

// JobRecorder persists per-export job records. Implementations may be
// nil-safe no-ops; recording never alters export semantics.
type JobRecorder interface {
	JobStarted(ctx context.Context, jobID, sessionID string, segmentCount int) error
	JobCompleted(ctx context.Context, jobID string) error
	JobFailed(ctx context.Context, jobID, message string) error
}

// Mirror replicates a completed artifact to secondary storage and
// returns its address there.
type Mirror interface {
	Upload(ctx context.Context, key, path string) (string, error)
}

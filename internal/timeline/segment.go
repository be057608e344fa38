// Package timeline models the set of time segments a user has marked on
// one source video: creation, drag-resize, deletion, validation, and the
// ordered wire form handed to the export pipeline.
package timeline

import (
	"github.com/google/uuid"

	"github.com/vidsplit/vidsplit/internal/timecode"
)

// Span is the wire form of a segment: the exact payload shape consumed
// by the export pipeline and serialized into render requests.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one user-chosen [start, end] window within the source
// video. Start and End are offsets in seconds. The labels are display
// values derived from Start/End and are recomputed on every change,
// never stored independently.
type Segment struct {
	ID         string  `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	StartLabel string  `json:"start_label"`
	EndLabel   string  `json:"end_label"`
}

func newSegment(start, end float64) Segment {
	s := Segment{
		ID:    uuid.NewString(),
		Start: start,
		End:   end,
	}
	s.refreshLabels()
	return s
}

func (s *Segment) refreshLabels() {
	s.StartLabel = timecode.Format(s.Start)
	s.EndLabel = timecode.Format(s.End)
}

func (s Segment) Span() Span {
	return Span{Start: s.Start, End: s.End}
}

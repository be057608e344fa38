package timeline

import (
	"errors"
	"sort"

	"github.com/vidsplit/vidsplit/internal/timecode"
)

const (
	// DefaultMinGap is the minimum distance kept between a segment's
	// endpoints during a resize.
	DefaultMinGap = 0.5

	// pointWindow is the default segment length when adding at a
	// playhead position or timeline click.
	pointWindow = 10.0
)

var (
	ErrInvalidStart    = errors.New("invalid start time")
	ErrInvalidEnd      = errors.New("invalid end time")
	ErrSegmentNotFound = errors.New("segment not found")
)

// Timeline is the ordered collection of segments for one source video.
// Segments are kept sorted ascending by start after every add. The
// collection is not safe for concurrent use; callers serialize access.
type Timeline struct {
	MinGap   float64
	segments []Segment
}

func New() *Timeline {
	return &Timeline{MinGap: DefaultMinGap}
}

// AddFromInputs parses user-entered start/end strings and inserts a new
// segment. The add is rejected, and the collection left unchanged, when
// either string fails to parse, start is outside [0, duration], end is
// not greater than start, or end exceeds duration.
func (t *Timeline) AddFromInputs(startStr, endStr string, duration float64) (Segment, error) {
	start, ok := timecode.Parse(startStr)
	if !ok || start < 0 || start > duration {
		return Segment{}, ErrInvalidStart
	}
	end, ok := timecode.Parse(endStr)
	if !ok || end <= start || end > duration {
		return Segment{}, ErrInvalidEnd
	}
	return t.insert(start, end), nil
}

// AddAtPoint inserts a segment starting at a playhead or timeline-click
// position, with a default window extending up to ten seconds forward,
// clamped to the video duration. The point is trusted to lie within
// [0, duration]; playback positions cannot exceed it by construction.
func (t *Timeline) AddAtPoint(point, duration float64) Segment {
	end := point + pointWindow
	if end > duration {
		end = duration
	}
	return t.insert(point, end)
}

func (t *Timeline) insert(start, end float64) Segment {
	seg := newSegment(start, end)
	t.segments = append(t.segments, seg)
	sort.SliceStable(t.segments, func(i, j int) bool {
		return t.segments[i].Start < t.segments[j].Start
	})
	return seg
}

// ResizeStart moves a segment's start toward the proposed time, never
// closer than MinGap to its end. The proposed time is assumed to be
// already bounded to [0, duration] by the drag surface. Safe to call on
// every pointer move; the result depends only on the proposed time.
func (t *Timeline) ResizeStart(id string, proposed float64) (Segment, error) {
	i := t.indexOf(id)
	if i < 0 {
		return Segment{}, ErrSegmentNotFound
	}
	seg := &t.segments[i]
	newStart := proposed
	if max := seg.End - t.minGap(); newStart > max {
		newStart = max
	}
	seg.Start = newStart
	seg.refreshLabels()
	return *seg, nil
}

// ResizeEnd moves a segment's end toward the proposed time, never
// closer than MinGap to its start.
func (t *Timeline) ResizeEnd(id string, proposed float64) (Segment, error) {
	i := t.indexOf(id)
	if i < 0 {
		return Segment{}, ErrSegmentNotFound
	}
	seg := &t.segments[i]
	newEnd := proposed
	if min := seg.Start + t.minGap(); newEnd < min {
		newEnd = min
	}
	seg.End = newEnd
	seg.refreshLabels()
	return *seg, nil
}

// Remove deletes the segment with the given id. The remaining
// collection order is unaffected.
func (t *Timeline) Remove(id string) error {
	i := t.indexOf(id)
	if i < 0 {
		return ErrSegmentNotFound
	}
	t.segments = append(t.segments[:i], t.segments[i+1:]...)
	return nil
}

// Reset empties the collection. Invoked whenever the uploaded video
// changes identity.
func (t *Timeline) Reset() {
	t.segments = nil
}

func (t *Timeline) Get(id string) (Segment, bool) {
	i := t.indexOf(id)
	if i < 0 {
		return Segment{}, false
	}
	return t.segments[i], true
}

// Segments returns a copy of the collection in ascending start order.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Spans returns the ordered {start, end} pairs, dropping ids and
// display labels.
func (t *Timeline) Spans() []Span {
	out := make([]Span, len(t.segments))
	for i, s := range t.segments {
		out[i] = s.Span()
	}
	return out
}

func (t *Timeline) Len() int {
	return len(t.segments)
}

func (t *Timeline) indexOf(id string) int {
	for i := range t.segments {
		if t.segments[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Timeline) minGap() float64 {
	if t.MinGap > 0 {
		return t.MinGap
	}
	return DefaultMinGap
}

// Restore replaces the collection with previously stored segments,
// re-deriving labels and re-sorting by start. Used when a session is
// loaded back from the repository.
func (t *Timeline) Restore(segments []Segment) {
	t.segments = make([]Segment, len(segments))
	copy(t.segments, segments)
	for i := range t.segments {
		t.segments[i].refreshLabels()
	}
	sort.SliceStable(t.segments, func(i, j int) bool {
		return t.segments[i].Start < t.segments[j].Start
	})
}

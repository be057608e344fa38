package timeline

import "errors"

// Endpoint names which edge of a segment a drag targets.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

func (e Endpoint) Valid() bool {
	return e == EndpointStart || e == EndpointEnd
}

var (
	ErrNoDrag         = errors.New("no drag in progress")
	ErrDragInProgress = errors.New("drag already in progress")
)

type dragState int

const (
	dragIdle dragState = iota
	dragActive
)

// Drag is the explicit idle -> dragging(segment, endpoint) -> idle state
// machine for resize interactions. Every Move recomputes the endpoint
// from the absolute pointer time, so repeated moves with the same time
// are idempotent and no unacknowledged state accumulates between
// pointer events.
type Drag struct {
	state     dragState
	segmentID string
	endpoint  Endpoint
}

// Begin starts a drag on one endpoint of an existing segment.
func (d *Drag) Begin(tl *Timeline, segmentID string, endpoint Endpoint) error {
	if d.state != dragIdle {
		return ErrDragInProgress
	}
	if !endpoint.Valid() {
		return errors.New("endpoint must be start or end")
	}
	if _, ok := tl.Get(segmentID); !ok {
		return ErrSegmentNotFound
	}
	d.state = dragActive
	d.segmentID = segmentID
	d.endpoint = endpoint
	return nil
}

// Move applies the current pointer time to the dragged endpoint,
// honoring the timeline's minimum-gap clamps.
func (d *Drag) Move(tl *Timeline, proposed float64) (Segment, error) {
	if d.state != dragActive {
		return Segment{}, ErrNoDrag
	}
	if d.endpoint == EndpointStart {
		return tl.ResizeStart(d.segmentID, proposed)
	}
	return tl.ResizeEnd(d.segmentID, proposed)
}

// End returns the machine to idle. Ending an idle drag is a no-op, as
// pointer-up and pointer-leave can both fire.
func (d *Drag) End() {
	d.state = dragIdle
	d.segmentID = ""
	d.endpoint = ""
}

func (d *Drag) Active() bool {
	return d.state == dragActive
}

// Target reports the segment and endpoint under drag, if any.
func (d *Drag) Target() (string, Endpoint, bool) {
	if d.state != dragActive {
		return "", "", false
	}
	return d.segmentID, d.endpoint, true
}

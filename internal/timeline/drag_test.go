package timeline

import (
	"errors"
	"testing"
)

func TestDrag_BeginMoveEnd(t *testing.T) {
	tl := New()
	seg, _ := tl.AddFromInputs("10", "20", 120)

	var d Drag
	if err := d.Begin(tl, seg.ID, EndpointStart); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !d.Active() {
		t.Fatal("drag should be active after begin")
	}

	got, err := d.Move(tl, 12)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if got.Start != 12 {
		t.Fatalf("start = %v, want 12", got.Start)
	}

	d.End()
	if d.Active() {
		t.Fatal("drag should be idle after end")
	}
	if _, err := d.Move(tl, 13); !errors.Is(err, ErrNoDrag) {
		t.Fatalf("move after end error = %v, want ErrNoDrag", err)
	}
}

func TestDrag_MoveClampsLikeResize(t *testing.T) {
	tl := New()
	seg, _ := tl.AddFromInputs("10", "20", 120)

	var d Drag
	if err := d.Begin(tl, seg.ID, EndpointEnd); err != nil {
		t.Fatalf("begin: %v", err)
	}
	got, err := d.Move(tl, 10.1)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if got.End != 10.5 {
		t.Fatalf("end = %v, want clamp to 10.5", got.End)
	}
}

func TestDrag_MoveIdempotentPerPointerEvent(t *testing.T) {
	tl := New()
	seg, _ := tl.AddFromInputs("10", "20", 120)

	var d Drag
	if err := d.Begin(tl, seg.ID, EndpointStart); err != nil {
		t.Fatalf("begin: %v", err)
	}
	first, _ := d.Move(tl, 14)
	second, _ := d.Move(tl, 14)
	if first != second {
		t.Fatalf("repeated move diverged: %+v vs %+v", first, second)
	}
}

func TestDrag_GuardRejectsSecondBegin(t *testing.T) {
	tl := New()
	seg, _ := tl.AddFromInputs("10", "20", 120)

	var d Drag
	if err := d.Begin(tl, seg.ID, EndpointStart); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := d.Begin(tl, seg.ID, EndpointEnd); !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("second begin error = %v, want ErrDragInProgress", err)
	}
}

func TestDrag_BeginUnknownSegment(t *testing.T) {
	tl := New()
	var d Drag
	if err := d.Begin(tl, "missing", EndpointStart); !errors.Is(err, ErrSegmentNotFound) {
		t.Fatalf("begin error = %v, want ErrSegmentNotFound", err)
	}
}

func TestDrag_BeginInvalidEndpoint(t *testing.T) {
	tl := New()
	seg, _ := tl.AddFromInputs("10", "20", 120)
	var d Drag
	if err := d.Begin(tl, seg.ID, Endpoint("middle")); err == nil {
		t.Fatal("expected error for invalid endpoint")
	}
}

func TestDrag_EndIsIdempotent(t *testing.T) {
	var d Drag
	d.End()
	d.End()
	if d.Active() {
		t.Fatal("drag should stay idle")
	}
}

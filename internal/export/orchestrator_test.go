package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vidsplit/vidsplit/internal/render"
	"github.com/vidsplit/vidsplit/internal/timeline"
)

type fakeRenderer struct {
	requests []render.Request
	failAt   int // 1-based call number to fail on; 0 = never
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, req render.Request) (*render.Response, error) {
	f.requests = append(f.requests, req)
	if f.failAt > 0 && len(f.requests) == f.failAt {
		err := f.err
		if err == nil {
			err = &render.ServiceError{StatusCode: 500, Body: "compositor crashed"}
		}
		return nil, err
	}
	// Mimic the service writing the requested file.
	os.WriteFile(filepath.Join(req.Settings.OutDir, req.Settings.OutFile), []byte("video"), 0o644)
	return &render.Response{OutputFile: req.Settings.OutFile}, nil
}

type recordingRecorder struct {
	started   []string
	completed []string
	failed    map[string]string
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{failed: map[string]string{}}
}

func (r *recordingRecorder) JobStarted(ctx context.Context, jobID, sessionID string, n int) error {
	r.started = append(r.started, jobID)
	return nil
}

func (r *recordingRecorder) JobCompleted(ctx context.Context, jobID string) error {
	r.completed = append(r.completed, jobID)
	return nil
}

func (r *recordingRecorder) JobFailed(ctx context.Context, jobID, message string) error {
	r.failed[jobID] = message
	return nil
}

func testOrchestrator(t *testing.T, renderer render.Renderer) (*Orchestrator, string) {
	t.Helper()
	workRoot := t.TempDir()
	o := NewOrchestrator(Config{
		Renderer:    renderer,
		WorkRoot:    workRoot,
		ProjectFile: "./revideo/project.ts",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return o, workRoot
}

func twoSegments() []timeline.Span {
	return []timeline.Span{{Start: 0, End: 10}, {Start: 20, End: 30}}
}

func TestExport_HappyPath(t *testing.T) {
	renderer := &fakeRenderer{}
	o, workRoot := testOrchestrator(t, renderer)

	res, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("source-bytes"),
		Segments: twoSegments(),
		Style:    Style{Title: "My Clip", BackgroundColor: "#112233", TextColor: "#445566"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(renderer.requests) != 2 {
		t.Fatalf("render calls = %d, want 2", len(renderer.requests))
	}
	if renderer.requests[0].Settings.OutFile != "segment-1.mp4" ||
		renderer.requests[1].Settings.OutFile != "segment-2.mp4" {
		t.Fatalf("out files = %q, %q",
			renderer.requests[0].Settings.OutFile, renderer.requests[1].Settings.OutFile)
	}
	if renderer.requests[1].Variables.SegmentStart != 20 {
		t.Fatalf("second call segment_start = %v, want 20", renderer.requests[1].Variables.SegmentStart)
	}

	urls := res.URLs()
	if len(urls) != 2 {
		t.Fatalf("urls = %v, want 2 entries", urls)
	}
	wantSuffixes := []string{"/segment-1.mp4", "/segment-2.mp4"}
	for i, u := range urls {
		if !strings.HasPrefix(u, "/artifacts/"+res.JobID+"/") || !strings.HasSuffix(u, wantSuffixes[i]) {
			t.Fatalf("urls[%d] = %q", i, u)
		}
	}

	// The source video is persisted once into the job's working area,
	// and every call points at the same copy.
	srcPath := filepath.Join(workRoot, res.JobID, "input.mp4")
	data, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatalf("source copy missing: %v", err)
	}
	if string(data) != "source-bytes" {
		t.Fatalf("source copy = %q", data)
	}
	for _, req := range renderer.requests {
		if len(req.Variables.VideoSources) != 1 || req.Variables.VideoSources[0] != srcPath {
			t.Fatalf("video_sources = %v, want [%s]", req.Variables.VideoSources, srcPath)
		}
	}
}

func TestExport_StyleDefaults(t *testing.T) {
	renderer := &fakeRenderer{}
	o, _ := testOrchestrator(t, renderer)

	_, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: []timeline.Span{{Start: 0, End: 5}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vars := renderer.requests[0].Variables
	if vars.TitleText != "Sprunki" || vars.TitleBgColor != "#FFD700" || vars.TitleTextColor != "#FFFFFF" {
		t.Fatalf("defaults not applied: %+v", vars)
	}
}

func TestExport_MissingInput(t *testing.T) {
	renderer := &fakeRenderer{}
	o, workRoot := testOrchestrator(t, renderer)

	cases := []Input{
		{Video: nil, Segments: twoSegments()},
		{Video: strings.NewReader("v"), Segments: nil},
		{Video: strings.NewReader("v"), Segments: []timeline.Span{}},
	}
	for _, in := range cases {
		if _, err := o.Export(context.Background(), in); !errors.Is(err, ErrMissingInput) {
			t.Fatalf("error = %v, want ErrMissingInput", err)
		}
	}

	if len(renderer.requests) != 0 {
		t.Fatalf("render calls = %d, want 0", len(renderer.requests))
	}
	entries, _ := os.ReadDir(workRoot)
	if len(entries) != 0 {
		t.Fatalf("work root entries = %d, want none (no job created)", len(entries))
	}
}

func TestExport_SecondSegmentFails_AbortsAndDiscards(t *testing.T) {
	renderer := &fakeRenderer{failAt: 2}
	o, workRoot := testOrchestrator(t, renderer)

	res, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: []timeline.Span{{Start: 0, End: 10}, {Start: 20, End: 30}, {Start: 40, End: 50}},
	})
	if res != nil {
		t.Fatalf("result = %+v, want nil on job-fatal failure", res)
	}

	var segErr *SegmentError
	if !errors.As(err, &segErr) {
		t.Fatalf("expected SegmentError, got %v", err)
	}
	if segErr.Index != 1 {
		t.Fatalf("failed index = %d, want 1", segErr.Index)
	}
	var svcErr *render.ServiceError
	if !errors.As(err, &svcErr) || !strings.Contains(svcErr.Body, "compositor crashed") {
		t.Fatalf("upstream error text not carried: %v", err)
	}

	// No third call was attempted, and the already-produced first
	// artifact was discarded with the job's working area.
	if len(renderer.requests) != 2 {
		t.Fatalf("render calls = %d, want 2", len(renderer.requests))
	}
	entries, _ := os.ReadDir(workRoot)
	if len(entries) != 0 {
		t.Fatalf("work root entries = %v, want discarded", entries)
	}
}

func TestExport_RecordsJobLifecycle(t *testing.T) {
	renderer := &fakeRenderer{}
	workRoot := t.TempDir()
	rec := newRecordingRecorder()
	o := NewOrchestrator(Config{
		Renderer: renderer,
		WorkRoot: workRoot,
		Recorder: rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	res, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: twoSegments(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.started) != 1 || rec.started[0] != res.JobID {
		t.Fatalf("started = %v", rec.started)
	}
	if len(rec.completed) != 1 || rec.completed[0] != res.JobID {
		t.Fatalf("completed = %v", rec.completed)
	}
}

func TestExport_RecordsFailure(t *testing.T) {
	renderer := &fakeRenderer{failAt: 1}
	rec := newRecordingRecorder()
	o := NewOrchestrator(Config{
		Renderer: renderer,
		WorkRoot: t.TempDir(),
		Recorder: rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	_, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: twoSegments(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rec.failed) != 1 {
		t.Fatalf("failed records = %v", rec.failed)
	}
	for _, msg := range rec.failed {
		if !strings.Contains(msg, "segment 1") {
			t.Fatalf("failure message = %q, want segment index", msg)
		}
	}
}

type fakeMirror struct {
	uploads map[string]string
	err     error
}

func (m *fakeMirror) Upload(ctx context.Context, key, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.uploads == nil {
		m.uploads = map[string]string{}
	}
	m.uploads[key] = path
	return "s3://clips/" + key, nil
}

func TestExport_MirrorsArtifacts(t *testing.T) {
	renderer := &fakeRenderer{}
	m := &fakeMirror{}
	o := NewOrchestrator(Config{
		Renderer: renderer,
		WorkRoot: t.TempDir(),
		Mirror:   m,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	res, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: twoSegments(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.uploads) != 2 {
		t.Fatalf("uploads = %v", m.uploads)
	}
	if res.Artifacts[0].MirrorURL != "s3://clips/"+res.JobID+"/segment-1.mp4" {
		t.Fatalf("mirror url = %q", res.Artifacts[0].MirrorURL)
	}
}

func TestExport_MirrorFailureDoesNotFailJob(t *testing.T) {
	renderer := &fakeRenderer{}
	m := &fakeMirror{err: errors.New("bucket gone")}
	o := NewOrchestrator(Config{
		Renderer: renderer,
		WorkRoot: t.TempDir(),
		Mirror:   m,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	res, err := o.Export(context.Background(), Input{
		Video:    strings.NewReader("v"),
		Segments: twoSegments(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Artifacts[0].MirrorURL != "" {
		t.Fatalf("mirror url = %q, want empty", res.Artifacts[0].MirrorURL)
	}
}

package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPClient_Render_Success(t *testing.T) {
	var received Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Response{OutputFile: "segment-1.mp4"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 0, testLogger())

	resp, err := client.Render(context.Background(), Request{
		ProjectFile: "./revideo/project.ts",
		Variables: Variables{
			VideoSources:   []string{"/work/job1/input.mp4"},
			TitleText:      "Sprunki",
			TitleBgColor:   "#FFD700",
			TitleTextColor: "#FFFFFF",
			SegmentStart:   0,
			SegmentEnd:     10,
		},
		Settings: Settings{
			OutFile:    "segment-1.mp4",
			OutDir:     "/work/job1",
			Dimensions: OutputDimensions,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.OutputFile != "segment-1.mp4" {
		t.Fatalf("output_file = %q, want segment-1.mp4", resp.OutputFile)
	}

	if len(received.Variables.VideoSources) != 1 || received.Variables.VideoSources[0] != "/work/job1/input.mp4" {
		t.Fatalf("video_sources = %v", received.Variables.VideoSources)
	}
	if received.Settings.Dimensions != [2]int{1080, 1920} {
		t.Fatalf("dimensions = %v, want [1080 1920]", received.Settings.Dimensions)
	}
	if received.Variables.SegmentEnd != 10 {
		t.Fatalf("segment_end = %v, want 10", received.Variables.SegmentEnd)
	}
}

func TestHTTPClient_Render_WireFieldNames(t *testing.T) {
	var raw map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &raw)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Response{OutputFile: "out.mp4"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 0, testLogger())
	_, err := client.Render(context.Background(), Request{ProjectFile: "p.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"projectFile", "variables", "settings"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("request body missing %q key: %v", key, raw)
		}
	}
}

func TestHTTPClient_Render_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("ffmpeg exited with code 1"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 0, testLogger())
	_, err := client.Render(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if svcErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status_code = %d", svcErr.StatusCode)
	}
	if !strings.Contains(svcErr.Body, "ffmpeg exited with code 1") {
		t.Fatalf("body = %q, want verbatim service text", svcErr.Body)
	}
}

func TestHTTPClient_Render_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Response{OutputFile: "out.mp4"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Render(ctx, Request{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestHTTPClient_ImplementsRenderer(t *testing.T) {
	var _ Renderer = (*HTTPClient)(nil)
}

// Package export turns one source video plus an ordered segment list
// into a sequence of render-service calls and assembles the result set.
// Each export owns a private working area keyed by a fresh job ID;
// segment renders run strictly sequentially and the first failure
// aborts the job, discarding its whole output set.
package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vidsplit/vidsplit/internal/logging"
	"github.com/vidsplit/vidsplit/internal/render"
)

const sourceFileName = "input.mp4"

type Orchestrator struct {
	renderer    render.Renderer
	workRoot    string
	projectFile string
	recorder    JobRecorder
	mirror      Mirror
	logger      *slog.Logger
}

type Config struct {
	Renderer    render.Renderer
	WorkRoot    string
	ProjectFile string
	Recorder    JobRecorder // optional
	Mirror      Mirror      // optional
	Logger      *slog.Logger
}

func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		renderer:    cfg.Renderer,
		workRoot:    cfg.WorkRoot,
		projectFile: cfg.ProjectFile,
		recorder:    cfg.Recorder,
		mirror:      cfg.Mirror,
		logger:      cfg.Logger,
	}
}

// Export runs the whole pipeline for one invocation. Render calls are
// issued one at a time in segment list order; the list is taken as-is,
// never reordered, deduplicated, or overlap-checked. On any failure
// the job's working area is discarded and no partial artifact list is
// returned.
func (o *Orchestrator) Export(ctx context.Context, in Input) (*Result, error) {
	if in.Video == nil || len(in.Segments) == 0 {
		return nil, ErrMissingInput
	}

	jobID := uuid.NewString()
	log := logging.WithJobID(o.logger, jobID)

	workDir := filepath.Join(o.workRoot, jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &StorageError{Err: fmt.Errorf("create work dir: %w", err)}
	}

	videoPath := filepath.Join(workDir, sourceFileName)
	if err := persistVideo(videoPath, in.Video); err != nil {
		o.discard(workDir, log)
		return nil, &StorageError{Err: err}
	}

	if o.recorder != nil {
		if err := o.recorder.JobStarted(ctx, jobID, in.SessionID, len(in.Segments)); err != nil {
			log.Warn("failed to record job start", "error", err)
		}
	}

	style := in.Style.withDefaults()
	log.Info("export started", "segments", len(in.Segments), "title", style.Title)

	artifacts := make([]Artifact, 0, len(in.Segments))
	for i, span := range in.Segments {
		outFile := fmt.Sprintf("segment-%d.mp4", i+1)

		resp, err := o.renderer.Render(ctx, render.Request{
			ProjectFile: o.projectFile,
			Variables: render.Variables{
				VideoSources:   []string{videoPath},
				TitleText:      style.Title,
				TitleBgColor:   style.BackgroundColor,
				TitleTextColor: style.TextColor,
				SegmentStart:   span.Start,
				SegmentEnd:     span.End,
			},
			Settings: render.Settings{
				OutFile:    outFile,
				OutDir:     workDir,
				Dimensions: render.OutputDimensions,
			},
		})
		if err != nil {
			segErr := &SegmentError{Index: i, Err: err}
			log.Error("segment render failed", "segment", i+1, "error", err)
			o.recordFailure(ctx, jobID, segErr, log)
			o.discard(workDir, log)
			return nil, segErr
		}

		artifacts = append(artifacts, Artifact{
			SegmentIndex: i,
			FileName:     resp.OutputFile,
			Path:         filepath.Join(workDir, resp.OutputFile),
			URL:          "/artifacts/" + jobID + "/" + resp.OutputFile,
		})
	}

	o.mirrorArtifacts(ctx, jobID, artifacts, log)

	if o.recorder != nil {
		if err := o.recorder.JobCompleted(ctx, jobID); err != nil {
			log.Warn("failed to record job completion", "error", err)
		}
	}

	log.Info("export completed", "artifacts", len(artifacts))
	return &Result{JobID: jobID, Artifacts: artifacts}, nil
}

func persistVideo(path string, video io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create source copy: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, video); err != nil {
		return fmt.Errorf("persist source video: %w", err)
	}
	return nil
}

// mirrorArtifacts replicates outputs to the configured mirror.
// Best-effort: mirror failures are logged and never fail the job.
func (o *Orchestrator) mirrorArtifacts(ctx context.Context, jobID string, artifacts []Artifact, log *slog.Logger) {
	if o.mirror == nil {
		return
	}
	for i := range artifacts {
		key := jobID + "/" + artifacts[i].FileName
		url, err := o.mirror.Upload(ctx, key, artifacts[i].Path)
		if err != nil {
			log.Warn("artifact mirror upload failed", "key", key, "error", err)
			continue
		}
		artifacts[i].MirrorURL = url
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, jobID string, cause error, log *slog.Logger) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.JobFailed(ctx, jobID, cause.Error()); err != nil {
		log.Warn("failed to record job failure", "error", err)
	}
}

func (o *Orchestrator) discard(workDir string, log *slog.Logger) {
	if err := os.RemoveAll(workDir); err != nil {
		log.Warn("failed to discard work dir", "dir", workDir, "error", err)
	}
}

// Package probe inspects uploaded source videos. The only fact the
// editor needs is the duration, which bounds every segment operation.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Prober reports the duration of a video file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobe shells out to ffprobe for the container-reported duration.
type FFprobe struct {
	bin    string
	logger *slog.Logger
}

func NewFFprobe(bin string, logger *slog.Logger) *FFprobe {
	if bin == "" {
		bin = "ffprobe"
	}
	return &FFprobe{bin: bin, logger: logger}
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w\n%s", err, string(out))
	}

	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}

	p.logger.Debug("probed video duration", "path", path, "seconds", sec)
	return sec, nil
}

// StubProber returns a fixed duration; used in tests and when ffprobe
// is not installed.
type StubProber struct {
	Seconds float64
}

func (p *StubProber) Duration(ctx context.Context, path string) (float64, error) {
	return p.Seconds, nil
}

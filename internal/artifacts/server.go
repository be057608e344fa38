// Package artifacts serves completed segment outputs out of the job
// working areas, with HTTP Range support so browsers can seek the
// generated previews.
package artifacts

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadName = errors.New("invalid artifact name")

// Service resolves and serves one artifact of one job.
type Service interface {
	ServeArtifact(w http.ResponseWriter, r *http.Request, jobID, name string) error
}

// Server serves artifacts from {root}/{jobID}/{name}. The job working
// area is the sole durable record of a completed export; there is no
// database of artifact bytes.
type Server struct {
	root   string
	logger *slog.Logger
}

func NewServer(root string, logger *slog.Logger) *Server {
	return &Server{root: root, logger: logger}
}

func (s *Server) ServeArtifact(w http.ResponseWriter, r *http.Request, jobID, name string) error {
	if !validPathElement(jobID) || !validPathElement(name) {
		http.Error(w, "not found", http.StatusNotFound)
		return ErrBadName
	}

	file, err := os.Open(filepath.Join(s.root, jobID, name))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	rng, err := parseRange(r.Header.Get("Range"), size)
	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	if err != nil && err != ErrInvalidRange {
		return err
	}

	if rng == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", rng.ContentLength()))
	w.Header().Set("Content-Range", rng.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(rng.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek artifact: %w", err)
	}

	io.CopyN(w, file, rng.ContentLength())
	return nil
}

// validPathElement accepts only a single clean path segment, keeping
// request paths from escaping the artifacts root.
func validPathElement(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, `/\`) {
		return false
	}
	return true
}

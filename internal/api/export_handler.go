package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidsplit/vidsplit/internal/export"
	"github.com/vidsplit/vidsplit/internal/session"
	"github.com/vidsplit/vidsplit/internal/timeline"
)

// maxUploadMemory bounds the in-memory part of multipart parsing;
// larger uploads spill to temp files.
const maxUploadMemory = 32 << 20

// exportHandler is the stateless one-shot pipeline: video, styling, and
// segment list arrive in a single multipart request and the response is
// the ordered artifact URL list.
func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart form", "BAD_REQUEST")
			return
		}

		var video io.Reader
		if file, _, err := r.FormFile("video"); err == nil {
			defer file.Close()
			video = file
		}

		var spans []timeline.Span
		if raw := r.FormValue("segments"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &spans); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid segments payload", "BAD_REQUEST")
				return
			}
		}

		result, err := cfg.Exporter.Export(r.Context(), export.Input{
			Video:    video,
			Segments: spans,
			Style: export.Style{
				Title:           r.FormValue("title"),
				BackgroundColor: r.FormValue("backgroundColor"),
				TextColor:       r.FormValue("textColor"),
			},
		})
		if err != nil {
			writeExportError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ExportResponse{JobID: result.JobID, VideoURLs: result.URLs()})
	}
}

// exportSessionHandler renders a stored session: the uploaded video,
// the current timeline, and the saved styling.
func exportSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sess, _, err := cfg.Sessions.GetSession(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		spans, err := cfg.Sessions.Spans(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		var video io.Reader
		if sess.VideoPath != "" {
			file, err := os.Open(sess.VideoPath)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "session video unavailable", "STORAGE_FAILED")
				return
			}
			defer file.Close()
			video = file
		}

		result, err := cfg.Exporter.Export(r.Context(), export.Input{
			Video:     video,
			Segments:  spans,
			SessionID: id,
			Style: export.Style{
				Title:           sess.Title,
				BackgroundColor: sess.BackgroundColor,
				TextColor:       sess.TextColor,
			},
		})
		if err != nil {
			writeExportError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ExportResponse{JobID: result.JobID, VideoURLs: result.URLs()})
	}
}

func writeExportError(w http.ResponseWriter, err error) {
	var segErr *export.SegmentError
	var storageErr *export.StorageError

	switch {
	case errors.Is(err, export.ErrMissingInput):
		WriteError(w, http.StatusBadRequest, err.Error(), "MISSING_INPUT")
	case errors.As(err, &segErr):
		WriteError(w, http.StatusInternalServerError, segErr.Error(), "RENDER_FAILED")
	case errors.As(err, &storageErr):
		WriteError(w, http.StatusInternalServerError, storageErr.Error(), "STORAGE_FAILED")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

// receiveVideo stores an uploaded video under the uploads dir and
// probes its duration.
func receiveVideo(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (name, path string, duration float64, ok bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form", "BAD_REQUEST")
		return "", "", 0, false
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "video file is required", "MISSING_INPUT")
		return "", "", 0, false
	}
	defer file.Close()

	if !session.IsVideoFile(header.Filename) {
		WriteError(w, http.StatusBadRequest, "unsupported video format", "BAD_REQUEST")
		return "", "", 0, false
	}

	dest := filepath.Join(cfg.UploadsDir, uuid.NewString()+filepath.Ext(header.Filename))
	out, err := os.Create(dest)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to store upload", "STORAGE_FAILED")
		return "", "", 0, false
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dest)
		WriteError(w, http.StatusInternalServerError, "failed to store upload", "STORAGE_FAILED")
		return "", "", 0, false
	}

	duration, err = cfg.Prober.Duration(r.Context(), dest)
	if err != nil {
		os.Remove(dest)
		WriteError(w, http.StatusBadRequest, "could not read video duration", "BAD_REQUEST")
		return "", "", 0, false
	}

	return header.Filename, dest, duration, true
}

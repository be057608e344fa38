package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidsplit/vidsplit/internal/session"
	"github.com/vidsplit/vidsplit/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware())

	r.Get("/health", healthHandler(cfg))

	r.Post("/export", exportHandler(cfg))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", createSessionHandler(cfg))
		r.Get("/", listSessionsHandler(cfg))
		r.Get("/{id}", getSessionHandler(cfg))
		r.Delete("/{id}", deleteSessionHandler(cfg))
		r.Put("/{id}/video", replaceVideoHandler(cfg))
		r.Post("/{id}/segments", addSegmentHandler(cfg))
		r.Delete("/{id}/segments", clearSegmentsHandler(cfg))
		r.Delete("/{id}/segments/{segmentID}", removeSegmentHandler(cfg))
		r.Post("/{id}/drag", dragHandler(cfg))
		r.Patch("/{id}/style", updateStyleHandler(cfg))
		r.Post("/{id}/export", exportSessionHandler(cfg))
	})

	r.Get("/jobs", listJobsHandler(cfg))
	r.Get("/jobs/{id}", getJobHandler(cfg))

	r.Get("/artifacts/{jobID}/{name}", artifactHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, path, duration, ok := receiveVideo(w, r, cfg)
		if !ok {
			return
		}

		sess, err := cfg.Sessions.CreateSession(r.Context(), name, path, duration)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusCreated, SessionToResponse(sess, nil))
	}
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := cfg.Sessions.ListSessions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list sessions", "INTERNAL_ERROR")
			return
		}

		resp := SessionsResponse{Sessions: make([]SessionResponse, len(sessions))}
		for i, s := range sessions {
			resp.Sessions[i] = SessionToResponse(s, nil)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, segments, err := cfg.Sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(sess, segments))
	}
}

func deleteSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func replaceVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, path, duration, ok := receiveVideo(w, r, cfg)
		if !ok {
			return
		}

		sess, err := cfg.Sessions.ReplaceVideo(r.Context(), chi.URLParam(r, "id"), name, path, duration)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SessionToResponse(sess, nil))
	}
}

func addSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req AddSegmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		var seg timeline.Segment
		var err error
		if req.Point != nil {
			seg, err = cfg.Sessions.AddSegmentAtPoint(r.Context(), id, *req.Point)
		} else {
			seg, err = cfg.Sessions.AddSegment(r.Context(), id, req.Start, req.End)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, SegmentToResponse(seg))
	}
}

func removeSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := cfg.Sessions.RemoveSegment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "segmentID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.ClearSegments(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dragHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req DragRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		switch req.Action {
		case "begin":
			endpoint := timeline.Endpoint(req.Endpoint)
			if !endpoint.Valid() {
				WriteError(w, http.StatusBadRequest, "endpoint must be start or end", "BAD_REQUEST")
				return
			}
			err := cfg.Sessions.BeginDrag(r.Context(), id, req.SegmentID, endpoint)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case "move":
			seg, err := cfg.Sessions.MoveDrag(r.Context(), id, req.Time)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, SegmentToResponse(seg))
		case "end":
			if err := cfg.Sessions.EndDrag(r.Context(), id); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			WriteError(w, http.StatusBadRequest, "action must be begin, move, or end", "BAD_REQUEST")
		}
	}
}

func updateStyleHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StyleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, err := cfg.Sessions.UpdateStyle(r.Context(), chi.URLParam(r, "id"), req.Title, req.BackgroundColor, req.TextColor)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SessionToResponse(sess, nil))
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Sessions.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := cfg.Sessions.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func artifactHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		name := chi.URLParam(r, "name")
		if err := cfg.Artifacts.ServeArtifact(w, r, jobID, name); err != nil {
			cfg.Logger.Error("artifact serve error", "job_id", jobID, "name", name, "error", err)
		}
	}
}

// writeServiceError maps editing errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
	case errors.Is(err, timeline.ErrSegmentNotFound):
		WriteError(w, http.StatusNotFound, "segment not found", "NOT_FOUND")
	case errors.Is(err, timeline.ErrInvalidStart), errors.Is(err, timeline.ErrInvalidEnd):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_SEGMENT")
	case errors.Is(err, timeline.ErrNoDrag), errors.Is(err, timeline.ErrDragInProgress):
		WriteError(w, http.StatusConflict, err.Error(), "DRAG_STATE")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

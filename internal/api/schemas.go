package api

import (
	"time"

	"github.com/vidsplit/vidsplit/internal/session"
	"github.com/vidsplit/vidsplit/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type SegmentResponse struct {
	ID         string  `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	StartLabel string  `json:"start_label"`
	EndLabel   string  `json:"end_label"`
}

type SessionResponse struct {
	ID              string            `json:"id"`
	VideoName       string            `json:"video_name"`
	Duration        float64           `json:"duration"`
	Title           string            `json:"title"`
	BackgroundColor string            `json:"background_color"`
	TextColor       string            `json:"text_color"`
	Segments        []SegmentResponse `json:"segments"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// AddSegmentRequest carries either typed start/end inputs or a clicked
// timeline position; exactly one of the two forms is used.
type AddSegmentRequest struct {
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
	Point *float64 `json:"point,omitempty"`
}

type DragRequest struct {
	Action    string  `json:"action"`
	SegmentID string  `json:"segment_id,omitempty"`
	Endpoint  string  `json:"endpoint,omitempty"`
	Time      float64 `json:"time,omitempty"`
}

type StyleRequest struct {
	Title           string `json:"title"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
}

// ExportResponse matches the wire contract the render-stack frontend
// consumes, hence the camelCase keys.
type ExportResponse struct {
	JobID     string   `json:"jobId"`
	VideoURLs []string `json:"videoUrls"`
}

type JobResponse struct {
	ID           string `json:"id"`
	SessionID    string `json:"session_id,omitempty"`
	Status       string `json:"status"`
	SegmentCount int    `json:"segment_count"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

func SegmentToResponse(seg timeline.Segment) SegmentResponse {
	return SegmentResponse{
		ID:         seg.ID,
		Start:      seg.Start,
		End:        seg.End,
		StartLabel: seg.StartLabel,
		EndLabel:   seg.EndLabel,
	}
}

func SessionToResponse(s *session.Session, segments []timeline.Segment) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID,
		VideoName:       s.VideoName,
		Duration:        s.Duration,
		Title:           s.Title,
		BackgroundColor: s.BackgroundColor,
		TextColor:       s.TextColor,
		Segments:        make([]SegmentResponse, len(segments)),
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
	for i, seg := range segments {
		resp.Segments[i] = SegmentToResponse(seg)
	}
	return resp
}

func JobToResponse(j *session.Job) JobResponse {
	return JobResponse{
		ID:           j.ID,
		SessionID:    j.SessionID,
		Status:       j.Status,
		SegmentCount: j.SegmentCount,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    j.UpdatedAt.Format(time.RFC3339),
	}
}

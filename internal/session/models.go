package session

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Session is one editing workspace: a single uploaded video plus the
// title-card styling applied to every rendered segment.
type Session struct {
	ID              string    `json:"id"`
	VideoName       string    `json:"video_name"`
	VideoPath       string    `json:"-"`
	Duration        float64   `json:"duration"`
	Title           string    `json:"title"`
	BackgroundColor string    `json:"background_color"`
	TextColor       string    `json:"text_color"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Job records one export run for the job history endpoints.
type Job struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id,omitempty"`
	Status       string    `json:"status"`
	SegmentCount int       `json:"segment_count"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}

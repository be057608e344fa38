package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/vidsplit/vidsplit/internal/timeline"
)

type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	UpdateSessionVideo(ctx context.Context, id, videoName, videoPath string, duration float64) error
	UpdateSessionStyle(ctx context.Context, id, title, backgroundColor, textColor string) error
	DeleteSession(ctx context.Context, id string) error

	ReplaceSegments(ctx context.Context, sessionID string, segments []timeline.Segment) error
	GetSegments(ctx context.Context, sessionID string) ([]timeline.Segment, error)

	CreateJob(ctx context.Context, j *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	CountJobs(ctx context.Context, status string) (int, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, video_name, video_path, duration, title, background_color, text_color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.VideoName, s.VideoPath, s.Duration, s.Title, s.BackgroundColor, s.TextColor,
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, video_name, video_path, duration, title, background_color, text_color, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)
	return r.scanSession(row)
}

func (r *SQLiteRepository) scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.VideoName, &s.VideoPath, &s.Duration, &s.Title, &s.BackgroundColor, &s.TextColor, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, video_name, video_path, duration, title, background_color, text_color, created_at, updated_at
		FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var s Session
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.VideoName, &s.VideoPath, &s.Duration, &s.Title, &s.BackgroundColor, &s.TextColor, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *SQLiteRepository) UpdateSessionVideo(ctx context.Context, id, videoName, videoPath string, duration float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET video_name = ?, video_path = ?, duration = ?, updated_at = datetime('now') WHERE id = ?
	`, videoName, videoPath, duration, id)
	return err
}

func (r *SQLiteRepository) UpdateSessionStyle(ctx context.Context, id, title, backgroundColor, textColor string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET title = ?, background_color = ?, text_color = ?, updated_at = datetime('now') WHERE id = ?
	`, title, backgroundColor, textColor, id)
	return err
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

// ReplaceSegments swaps the stored segment set for a session in one
// transaction, preserving timeline order through the position column.
func (r *SQLiteRepository) ReplaceSegments(ctx context.Context, sessionID string, segments []timeline.Segment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE session_id = ?", sessionID); err != nil {
		return err
	}

	for i, seg := range segments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO segments (id, session_id, start_time, end_time, position)
			VALUES (?, ?, ?, ?, ?)
		`, seg.ID, sessionID, seg.Start, seg.End, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) GetSegments(ctx context.Context, sessionID string) ([]timeline.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_time, end_time FROM segments WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []timeline.Segment
	for rows.Next() {
		var seg timeline.Segment
		if err := rows.Scan(&seg.ID, &seg.Start, &seg.End); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, session_id, status, segment_count, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.SessionID, j.Status, j.SegmentCount, j.Error,
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, status, segment_count, error, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)

	var j Job
	var createdAt, updatedAt string
	err := row.Scan(&j.ID, &j.SessionID, &j.Status, &j.SegmentCount, &j.Error, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, status, segment_count, error, created_at, updated_at
		FROM jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var j Job
		var createdAt, updatedAt string
		if err := rows.Scan(&j.ID, &j.SessionID, &j.Status, &j.SegmentCount, &j.Error, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) CountJobs(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs WHERE status = ?", status).Scan(&n)
	return n, err
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = datetime('now') WHERE id = ?
	`, status, errorMsg, id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}

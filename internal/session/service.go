package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidsplit/vidsplit/internal/logging"
	"github.com/vidsplit/vidsplit/internal/timeline"
)

var ErrSessionNotFound = errors.New("session not found")

// Keys in the config table holding the sticky style defaults. The last
// style a user saved seeds the title card of every new session.
const (
	configKeyDefaultTitle      = "default_title"
	configKeyDefaultBackground = "default_background_color"
	configKeyDefaultTextColor  = "default_text_color"
)

// editState pairs a session's in-memory timeline with its drag machine.
// The database copy of the segments is rewritten after every mutation,
// so a restart reconstructs this state from storage.
type editState struct {
	timeline *timeline.Timeline
	drag     timeline.Drag
}

// Service owns session lifecycle and all segment editing. Editing goes
// through a single mutex: sessions are per-user local state and the
// operations are cheap, so one lock keeps the timeline and its stored
// copy in step without per-session bookkeeping.
type Service struct {
	repo   Repository
	logger *slog.Logger

	mu          sync.Mutex
	states      map[string]*editState
	jobListener func(job Job)
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		states: make(map[string]*editState),
	}
}

// CreateSession registers an uploaded video and returns a fresh session
// with an empty timeline. The title-card style starts from the saved
// defaults, or empty on a fresh install.
func (s *Service) CreateSession(ctx context.Context, videoName, videoPath string, duration float64) (*Session, error) {
	title, background, textColor, err := s.styleDefaults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load style defaults: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:              uuid.NewString(),
		VideoName:       videoName,
		VideoPath:       videoPath,
		Duration:        duration,
		Title:           title,
		BackgroundColor: background,
		TextColor:       textColor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.states[sess.ID] = &editState{timeline: timeline.New()}
	s.mu.Unlock()

	if s.logger != nil {
		logging.WithSessionID(s.logger, sess.ID).Info("session created", "video", videoName, "duration", duration)
	}
	return sess, nil
}

// GetSession returns a session and its current segments in timeline order.
func (s *Service) GetSession(ctx context.Context, id string) (*Session, []timeline.Segment, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sess, state.timeline.Segments(), nil
}

func (s *Service) ListSessions(ctx context.Context) ([]*Session, error) {
	return s.repo.ListSessions(ctx)
}

// ReplaceVideo swaps the session's video and clears every segment. The
// old timeline describes positions in a video that no longer exists, so
// nothing of it survives the swap.
func (s *Service) ReplaceVideo(ctx context.Context, id, videoName, videoPath string, duration float64) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	if err := s.repo.UpdateSessionVideo(ctx, id, videoName, videoPath, duration); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	state.drag.End()
	state.timeline.Reset()
	if err := s.repo.ReplaceSegments(ctx, id, nil); err != nil {
		return nil, err
	}

	sess.VideoName = videoName
	sess.VideoPath = videoPath
	sess.Duration = duration

	if s.logger != nil {
		s.logger.Info("video replaced", "session_id", id, "video", videoName)
	}
	return sess, nil
}

// AddSegment inserts a segment from typed start/end inputs.
func (s *Service) AddSegment(ctx context.Context, id, startInput, endInput string) (timeline.Segment, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}
	if sess == nil {
		return timeline.Segment{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}

	seg, err := state.timeline.AddFromInputs(startInput, endInput, sess.Duration)
	if err != nil {
		return timeline.Segment{}, err
	}
	return seg, s.persistLocked(ctx, id, state)
}

// AddSegmentAtPoint inserts a default-length segment at a clicked
// timeline position.
func (s *Service) AddSegmentAtPoint(ctx context.Context, id string, point float64) (timeline.Segment, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}
	if sess == nil {
		return timeline.Segment{}, ErrSessionNotFound
	}
	if point < 0 || point >= sess.Duration {
		return timeline.Segment{}, timeline.ErrInvalidStart
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}

	seg := state.timeline.AddAtPoint(point, sess.Duration)
	return seg, s.persistLocked(ctx, id, state)
}

func (s *Service) RemoveSegment(ctx context.Context, id, segmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return err
	}

	if dragged, _, ok := state.drag.Target(); ok && dragged == segmentID {
		state.drag.End()
	}
	if err := state.timeline.Remove(segmentID); err != nil {
		return err
	}
	return s.persistLocked(ctx, id, state)
}

func (s *Service) ClearSegments(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return err
	}

	state.drag.End()
	state.timeline.Reset()
	return s.persistLocked(ctx, id, state)
}

// BeginDrag starts resizing one endpoint of a segment.
func (s *Service) BeginDrag(ctx context.Context, id, segmentID string, endpoint timeline.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return err
	}
	return state.drag.Begin(state.timeline, segmentID, endpoint)
}

// MoveDrag applies a pointer position to the active drag. The clamped
// segment is persisted on every move so a crash mid-drag loses nothing.
func (s *Service) MoveDrag(ctx context.Context, id string, proposed float64) (timeline.Segment, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}
	if sess == nil {
		return timeline.Segment{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return timeline.Segment{}, err
	}

	if proposed < 0 {
		proposed = 0
	}
	if proposed > sess.Duration {
		proposed = sess.Duration
	}

	seg, err := state.drag.Move(state.timeline, proposed)
	if err != nil {
		return timeline.Segment{}, err
	}
	return seg, s.persistLocked(ctx, id, state)
}

func (s *Service) EndDrag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return err
	}
	state.drag.End()
	return nil
}

// UpdateStyle sets the title-card text and colors used at export time,
// and saves them as the defaults for future sessions.
func (s *Service) UpdateStyle(ctx context.Context, id, title, backgroundColor, textColor string) (*Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	if err := s.repo.UpdateSessionStyle(ctx, id, title, backgroundColor, textColor); err != nil {
		return nil, err
	}

	if err := s.saveStyleDefaults(ctx, title, backgroundColor, textColor); err != nil && s.logger != nil {
		s.logger.Warn("failed to save style defaults", "error", err)
	}

	sess.Title = title
	sess.BackgroundColor = backgroundColor
	sess.TextColor = textColor
	return sess, nil
}

// styleDefaults reads the sticky style from the config table. Missing
// keys come back as empty strings, which the export pipeline later
// replaces with its built-in defaults.
func (s *Service) styleDefaults(ctx context.Context) (title, background, textColor string, err error) {
	if title, err = s.repo.GetConfig(ctx, configKeyDefaultTitle); err != nil {
		return
	}
	if background, err = s.repo.GetConfig(ctx, configKeyDefaultBackground); err != nil {
		return
	}
	textColor, err = s.repo.GetConfig(ctx, configKeyDefaultTextColor)
	return
}

func (s *Service) saveStyleDefaults(ctx context.Context, title, background, textColor string) error {
	if err := s.repo.SetConfig(ctx, configKeyDefaultTitle, title); err != nil {
		return err
	}
	if err := s.repo.SetConfig(ctx, configKeyDefaultBackground, background); err != nil {
		return err
	}
	return s.repo.SetConfig(ctx, configKeyDefaultTextColor, textColor)
}

// Spans returns the session's segments as bare time ranges for export.
func (s *Service) Spans(ctx context.Context, id string) ([]timeline.Span, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return state.timeline.Spans(), nil
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()

	return s.repo.DeleteSession(ctx, id)
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

func (s *Service) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	return s.repo.ListJobs(ctx, limit)
}

// CompletedJobCount reports how many exports have finished successfully.
func (s *Service) CompletedJobCount(ctx context.Context) (int, error) {
	return s.repo.CountJobs(ctx, JobStatusCompleted)
}

// SetJobListener registers a callback invoked after every job state
// change. The tray uses it to keep its status line current.
func (s *Service) SetJobListener(fn func(job Job)) {
	s.mu.Lock()
	s.jobListener = fn
	s.mu.Unlock()
}

// JobStarted records a running export job. Together with JobCompleted
// and JobFailed this makes Service a recorder for the export pipeline.
func (s *Service) JobStarted(ctx context.Context, jobID, sessionID string, segmentCount int) error {
	now := time.Now()
	job := Job{
		ID:           jobID,
		SessionID:    sessionID,
		Status:       JobStatusRunning,
		SegmentCount: segmentCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateJob(ctx, &job); err != nil {
		return err
	}
	s.notifyJob(job)
	return nil
}

func (s *Service) JobCompleted(ctx context.Context, jobID string) error {
	if err := s.repo.UpdateJobStatus(ctx, jobID, JobStatusCompleted, ""); err != nil {
		return err
	}
	s.notifyJob(Job{ID: jobID, Status: JobStatusCompleted})
	return nil
}

func (s *Service) JobFailed(ctx context.Context, jobID, message string) error {
	if err := s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, message); err != nil {
		return err
	}
	s.notifyJob(Job{ID: jobID, Status: JobStatusFailed, Error: message})
	return nil
}

func (s *Service) notifyJob(job Job) {
	s.mu.Lock()
	fn := s.jobListener
	s.mu.Unlock()
	if fn != nil {
		fn(job)
	}
}

// stateLocked returns the in-memory edit state for a session, loading
// the stored segments when the session is not cached. Caller holds mu.
func (s *Service) stateLocked(ctx context.Context, id string) (*editState, error) {
	if state, ok := s.states[id]; ok {
		return state, nil
	}

	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	segments, err := s.repo.GetSegments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}

	tl := timeline.New()
	tl.Restore(segments)

	state := &editState{timeline: tl}
	s.states[id] = state
	return state, nil
}

func (s *Service) persistLocked(ctx context.Context, id string, state *editState) error {
	if err := s.repo.ReplaceSegments(ctx, id, state.timeline.Segments()); err != nil {
		return fmt.Errorf("persist segments: %w", err)
	}
	return nil
}

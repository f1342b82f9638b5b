package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wingman/internal/domain"
	"wingman/internal/ports"
)

// State-machine misuse is a hard failure for the caller, unlike service
// failures, which become fallback text.
var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// ClipFinalizer turns accumulated raw PCM into the single blob handed to the
// transcription service.
type ClipFinalizer func(pcm []byte) domain.AudioClip

// Config controls capture and session defaults.
type Config struct {
	Audio           ports.AudioConfig
	ChunkSize       int
	DefaultModel    domain.Model
	DefaultPosition string
	Finalize        ClipFinalizer
}

// SessionController orchestrates one live interview session: the recording
// state machine, transcript acquisition, and answer generation. It owns the
// Session and mediates every mutation of it.
type SessionController struct {
	audio       ports.AudioCapture
	transcriber ports.Transcriber
	generator   ports.AnswerGenerator
	events      ports.EventSink
	cfg         Config

	mu      sync.Mutex
	session domain.Session
	current *activeRecording
}

func NewSessionController(
	audio ports.AudioCapture,
	transcriber ports.Transcriber,
	generator ports.AnswerGenerator,
	events ports.EventSink,
	cfg Config,
) *SessionController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = domain.DefaultModel
	}
	if cfg.DefaultPosition == "" {
		cfg.DefaultPosition = domain.DefaultPosition
	}
	if cfg.Finalize == nil {
		cfg.Finalize = func(pcm []byte) domain.AudioClip {
			return domain.AudioClip{Data: pcm}
		}
	}

	return &SessionController{
		audio:       audio,
		transcriber: transcriber,
		generator:   generator,
		events:      events,
		cfg:         cfg,
		session: domain.Session{
			Model:          cfg.DefaultModel,
			Position:       cfg.DefaultPosition,
			RecordingState: domain.RecordingStateIdle,
		},
	}
}

// Start begins a new capture pass. It fails with ErrAlreadyRecording unless
// the session is idle, and surfaces device failures without changing state.
func (c *SessionController) Start(ctx context.Context) error {
	if state := c.recordingState(); state != domain.RecordingStateIdle {
		return fmt.Errorf("%w: session is %s", ErrAlreadyRecording, state)
	}

	audioSession, err := c.audio.Start(ctx, c.cfg.Audio)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeDevice, err.Error())
		return err
	}

	rec := &activeRecording{
		session: audioSession,
		chunks:  newRecordedChunks(),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	if c.session.RecordingState != domain.RecordingStateIdle {
		c.mu.Unlock()
		_ = audioSession.Stop()
		return fmt.Errorf("%w: session is %s", ErrAlreadyRecording, c.recordingState())
	}
	c.session.RecordingState = domain.RecordingStateRecording
	c.current = rec
	c.mu.Unlock()

	go captureAudioChunks(audioSession, rec.chunks, c.cfg.ChunkSize, c.events, rec.done)

	c.events.RecordingStateChanged(domain.RecordingStateRecording, domain.SessionReasonRecordingStarted)
	return nil
}

// Stop ends the active capture pass, finalizes the buffer into a single clip,
// and runs the transcription round trip. It returns once the transcript (or
// its fallback text) is written; the state returns to idle either way.
func (c *SessionController) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.session.RecordingState != domain.RecordingStateRecording || c.current == nil {
		state := c.session.RecordingState
		c.mu.Unlock()
		return "", fmt.Errorf("%w: session is %s", ErrNotRecording, state)
	}
	rec := c.current
	c.current = nil
	c.session.RecordingState = domain.RecordingStateTranscribing
	c.mu.Unlock()

	c.events.RecordingStateChanged(domain.RecordingStateTranscribing, domain.SessionReasonTranscribing)

	if err := rec.session.Stop(); err != nil {
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	// Capture has fully ceased once the pump exits; no chunk can arrive after
	// the clip is built.
	<-rec.done

	clip := c.cfg.Finalize(rec.chunks.take())

	text, err := c.transcriber.Transcribe(ctx, clip)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeTranscription, err.Error())
	}

	c.mu.Lock()
	c.session.Transcript = text
	c.session.RecordingState = domain.RecordingStateIdle
	c.mu.Unlock()

	c.events.TranscriptReady(text)
	reason := domain.SessionReasonTranscriptReady
	if err != nil {
		reason = domain.SessionReasonTranscriptionFailed
	}
	c.events.RecordingStateChanged(domain.RecordingStateIdle, reason)
	return text, nil
}

// Generate snapshots the session context and requests a short/long answer
// pair. It is permitted in any recording state; the transcript may come from
// a recording or have been typed by hand. Service failures surface as
// fallback text in the returned pair, never as an error to the caller.
func (c *SessionController) Generate(ctx context.Context) domain.Answers {
	req := c.SnapshotRequest()

	answers, err := c.generator.Generate(ctx, req)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeGeneration, err.Error())
	}

	c.mu.Lock()
	c.session.Answers = &domain.Answers{Short: answers.Short, Long: answers.Long}
	c.mu.Unlock()

	c.events.AnswersReady(answers)
	return answers
}

// SnapshotRequest copies the editable fields and transcript into an immutable
// request value. Later session edits do not alter an in-flight request.
func (c *SessionController) SnapshotRequest() domain.AnswerRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.AnswerRequest{
		JobPosting: c.session.JobPosting,
		Resume:     c.session.Resume,
		Position:   c.session.Position,
		Model:      string(c.session.Model),
		Transcript: c.session.Transcript,
	}
}

// Snapshot returns a copy of the current session for rendering.
func (c *SessionController) Snapshot() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.session
	if c.session.Answers != nil {
		answers := *c.session.Answers
		snapshot.Answers = &answers
	}
	return snapshot
}

func (c *SessionController) SetJobPosting(text string) {
	c.mu.Lock()
	c.session.JobPosting = text
	c.mu.Unlock()
}

func (c *SessionController) SetResume(text string) {
	c.mu.Lock()
	c.session.Resume = text
	c.mu.Unlock()
}

func (c *SessionController) SetPosition(text string) {
	c.mu.Lock()
	c.session.Position = text
	c.mu.Unlock()
}

// SetModel stores the selection verbatim; whether the backend supports the
// value is the backend's concern.
func (c *SessionController) SetModel(model domain.Model) {
	c.mu.Lock()
	c.session.Model = model
	c.mu.Unlock()
}

// SetTranscript lets the user type or correct a transcript by hand without
// ever recording.
func (c *SessionController) SetTranscript(text string) {
	c.mu.Lock()
	c.session.Transcript = text
	c.mu.Unlock()
}

func (c *SessionController) recordingState() domain.RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.RecordingState
}

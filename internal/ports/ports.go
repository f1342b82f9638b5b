package ports

import (
	"context"
	"errors"
	"io"

	"wingman/internal/domain"
)

// ErrDeviceUnavailable marks microphone access failures: permission denied,
// missing hardware, or the recorder process refusing to start.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session. The device handle is held
// exclusively until Stop or Close.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Transcriber converts a finalized audio clip into text.
//
// On failure the returned text is still renderable: it carries the fixed
// fallback string while the error describes the real cause for the internal
// error channel. Callers render the text either way.
type Transcriber interface {
	Transcribe(ctx context.Context, clip domain.AudioClip) (string, error)
}

// AnswerGenerator produces a short/long answer pair for a context snapshot.
//
// Both answer fields are always populated; a field the service did not return
// carries its fallback string, and the error reports what actually failed.
type AnswerGenerator interface {
	Generate(ctx context.Context, req domain.AnswerRequest) (domain.Answers, error)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	RecordingStateChanged(state domain.RecordingState, reason domain.SessionStateReason)
	TranscriptReady(text string)
	AnswersReady(answers domain.Answers)
	SessionError(code domain.ErrorCode, detail string)
}

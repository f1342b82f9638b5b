package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"wingman/internal/bootstrap"
	"wingman/internal/config"
	"wingman/internal/domain"
	"wingman/internal/usecase"
)

const (
	eventSession    = "wingman:session"
	eventTranscript = "wingman:transcript"
	eventAnswers    = "wingman:answers"
	eventError      = "wingman:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.SessionController
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.RecordingStateChanged(domain.RecordingStateIdle, domain.SessionReasonReady)
}

// StartRecording begins capturing the interviewer's question.
func (a *App) StartRecording() (domain.Session, error) {
	if err := a.requireReady(); err != nil {
		return domain.Session{}, err
	}
	if err := a.controller.Start(a.ctx); err != nil {
		return domain.Session{}, err
	}
	return a.controller.Snapshot(), nil
}

// StopRecording ends capture and waits for the transcription round trip.
func (a *App) StopRecording() (domain.Session, error) {
	if err := a.requireReady(); err != nil {
		return domain.Session{}, err
	}
	if _, err := a.controller.Stop(a.ctx); err != nil {
		return domain.Session{}, err
	}
	return a.controller.Snapshot(), nil
}

// GenerateAnswers produces a short/long answer pair from the current session
// context. Works in any recording state, including with a hand-typed
// transcript.
func (a *App) GenerateAnswers() (domain.Answers, error) {
	if err := a.requireReady(); err != nil {
		return domain.Answers{}, err
	}
	return a.controller.Generate(a.ctx), nil
}

// GetSession returns the current session for rendering.
func (a *App) GetSession() domain.Session {
	if a.controller == nil {
		return domain.Session{RecordingState: domain.RecordingStateIdle}
	}
	return a.controller.Snapshot()
}

// GetModels lists the selectable answer models.
func (a *App) GetModels() []string {
	models := domain.SupportedModels()
	names := make([]string, 0, len(models))
	for _, model := range models {
		names = append(names, string(model))
	}
	return names
}

func (a *App) SetJobPosting(text string) {
	if a.controller != nil {
		a.controller.SetJobPosting(text)
	}
}

func (a *App) SetResume(text string) {
	if a.controller != nil {
		a.controller.SetResume(text)
	}
}

func (a *App) SetPosition(text string) {
	if a.controller != nil {
		a.controller.SetPosition(text)
	}
}

func (a *App) SetModel(model string) {
	if a.controller != nil {
		a.controller.SetModel(domain.Model(model))
	}
}

func (a *App) SetTranscript(text string) {
	if a.controller != nil {
		a.controller.SetTranscript(text)
	}
}

// CopyAnswer writes the requested answer ("short" or "long") to the system
// clipboard.
func (a *App) CopyAnswer(kind string) error {
	if err := a.requireReady(); err != nil {
		return err
	}

	session := a.controller.Snapshot()
	if session.Answers == nil {
		return fmt.Errorf("no answers generated yet")
	}

	text := session.Answers.Long
	if kind == "short" {
		text = session.Answers.Short
	}

	if err := runtime.ClipboardSetText(a.ctx, text); err != nil {
		a.SessionError(domain.ErrorCodeClipboard, "answer ready but clipboard write failed")
		return err
	}
	return nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"serviceBaseURL":   a.cfg.Services.BaseURL,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"defaultModel":     string(domain.DefaultModel),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// RecordingStateChanged emits session lifecycle updates to the frontend.
func (a *App) RecordingStateChanged(state domain.RecordingState, reason domain.SessionStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// TranscriptReady emits the transcript written by the last recording pass.
func (a *App) TranscriptReady(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]string{"text": text})
}

// AnswersReady emits a freshly generated answer pair.
func (a *App) AnswersReady(answers domain.Answers) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventAnswers, map[string]string{
		"short": answers.Short,
		"long":  answers.Long,
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonReady:
		return "Ready"
	case domain.SessionReasonRecordingStarted:
		return "Recording started"
	case domain.SessionReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.SessionReasonTranscriptReady:
		return "Transcript ready"
	case domain.SessionReasonTranscriptionFailed:
		return "Transcription failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeDevice:
		return "Microphone unavailable"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeGeneration:
		return "Answer generation error"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

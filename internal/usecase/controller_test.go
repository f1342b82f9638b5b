package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"wingman/internal/domain"
	"wingman/internal/ports"
	"wingman/internal/providers/answers"
)

func TestControllerRecordStopLifecycle(t *testing.T) {
	t.Parallel()

	audioSession := &fakeAudioSession{chunks: [][]byte{[]byte("pcm")}}
	transcriber := &fakeTranscriber{text: "Tell me about yourself."}
	events := &fakeEventSink{}

	controller := NewSessionController(
		&fakeAudioCapture{sessions: []ports.AudioSession{audioSession}},
		transcriber,
		&fakeGenerator{},
		events,
		Config{},
	)

	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateIdle {
		t.Fatalf("expected idle initial state, got %s", got)
	}

	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateRecording {
		t.Fatalf("expected recording state, got %s", got)
	}

	text, err := controller.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if text != "Tell me about yourself." {
		t.Fatalf("unexpected transcript: %q", text)
	}

	session := controller.Snapshot()
	if session.RecordingState != domain.RecordingStateIdle {
		t.Fatalf("expected idle state after stop, got %s", session.RecordingState)
	}
	if session.Transcript != "Tell me about yourself." {
		t.Fatalf("transcript not written to session: %q", session.Transcript)
	}
	if audioSession.stopCalls == 0 {
		t.Fatalf("expected device to be released on stop")
	}

	reasons := events.stateReasons()
	want := []domain.SessionStateReason{
		domain.SessionReasonRecordingStarted,
		domain.SessionReasonTranscribing,
		domain.SessionReasonTranscriptReady,
	}
	if len(reasons) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(reasons), reasons)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], reasons[i])
		}
	}
}

func TestControllerStartWhileRecordingFails(t *testing.T) {
	t.Parallel()

	controller := NewSessionController(
		&fakeAudioCapture{sessions: []ports.AudioSession{
			&fakeAudioSession{blockReads: true},
			&fakeAudioSession{blockReads: true},
		}},
		&fakeTranscriber{},
		&fakeGenerator{},
		&fakeEventSink{},
		Config{},
	)

	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := controller.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateRecording {
		t.Fatalf("misuse must not change state, got %s", got)
	}
}

func TestControllerStopWhileIdleFails(t *testing.T) {
	t.Parallel()

	controller := NewSessionController(
		&fakeAudioCapture{},
		&fakeTranscriber{},
		&fakeGenerator{},
		&fakeEventSink{},
		Config{},
	)

	if _, err := controller.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestControllerMisuseDuringTranscription(t *testing.T) {
	t.Parallel()

	transcriber := &fakeTranscriber{
		text:    "question",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	controller := NewSessionController(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{chunks: [][]byte{[]byte("a")}}}},
		transcriber,
		&fakeGenerator{answers: domain.Answers{Short: "s", Long: "l"}},
		&fakeEventSink{},
		Config{},
	)

	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	stopDone := make(chan error, 1)
	go func() {
		_, err := controller.Stop(context.Background())
		stopDone <- err
	}()
	<-transcriber.started

	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateTranscribing {
		t.Fatalf("expected transcribing state, got %s", got)
	}
	if _, err := controller.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording during transcription, got %v", err)
	}
	if err := controller.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording during transcription, got %v", err)
	}

	// Generation is independent of recording state; it snapshots whatever
	// transcript exists right now.
	result := controller.Generate(context.Background())
	if result.Short != "s" || result.Long != "l" {
		t.Fatalf("unexpected answers during transcription: %+v", result)
	}

	close(transcriber.release)
	if err := <-stopDone; err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if got := controller.Snapshot().Transcript; got != "question" {
		t.Fatalf("transcript not written after release: %q", got)
	}
}

func TestControllerFinalizesChunksInArrivalOrder(t *testing.T) {
	t.Parallel()

	audioSession := &fakeAudioSession{chunks: [][]byte{[]byte("first-"), []byte("second-"), []byte("third")}}
	transcriber := &fakeTranscriber{text: "ok"}

	controller := NewSessionController(
		&fakeAudioCapture{sessions: []ports.AudioSession{audioSession}},
		transcriber,
		&fakeGenerator{},
		&fakeEventSink{},
		Config{},
	)

	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := controller.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if got := string(transcriber.lastClip.Data); got != "first-second-third" {
		t.Fatalf("chunks lost or reordered: %q", got)
	}
}

func TestControllerTranscriptionFallback(t *testing.T) {
	t.Parallel()

	transcriber := &fakeTranscriber{text: domain.FallbackTranscript, err: errors.New("connection refused")}
	events := &fakeEventSink{}

	controller := NewSessionController(
		&fakeAudioCapture{sessions: []ports.AudioSession{&fakeAudioSession{chunks: [][]byte{[]byte("a")}}}},
		transcriber,
		&fakeGenerator{},
		events,
		Config{},
	)

	if err := controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	text, err := controller.Stop(context.Background())
	if err != nil {
		t.Fatalf("service failure must not fail stop: %v", err)
	}
	if text != domain.FallbackTranscript {
		t.Fatalf("expected fallback transcript, got %q", text)
	}

	session := controller.Snapshot()
	if session.Transcript != domain.FallbackTranscript {
		t.Fatalf("expected fallback in session, got %q", session.Transcript)
	}
	if session.RecordingState != domain.RecordingStateIdle {
		t.Fatalf("state must return to idle on failure, got %s", session.RecordingState)
	}

	reasons := events.stateReasons()
	if reasons[len(reasons)-1] != domain.SessionReasonTranscriptionFailed {
		t.Fatalf("expected transcription_failed reason, got %s", reasons[len(reasons)-1])
	}
	errs := events.errorCodes()
	if len(errs) == 0 || errs[len(errs)-1] != domain.ErrorCodeTranscription {
		t.Fatalf("expected structured transcription error, got %v", errs)
	}
}

func TestControllerStartDeviceUnavailable(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	controller := NewSessionController(
		&fakeAudioCapture{err: ports.ErrDeviceUnavailable},
		&fakeTranscriber{},
		&fakeGenerator{},
		events,
		Config{},
	)

	err := controller.Start(context.Background())
	if !errors.Is(err, ports.ErrDeviceUnavailable) {
		t.Fatalf("expected device unavailable, got %v", err)
	}
	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateIdle {
		t.Fatalf("failed start must leave state idle, got %s", got)
	}
	codes := events.errorCodes()
	if len(codes) == 0 || codes[0] != domain.ErrorCodeDevice {
		t.Fatalf("expected device error event, got %v", codes)
	}
}

func TestControllerGenerateWritesBothAnswersTogether(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{answers: domain.Answers{Short: "short answer", Long: "long answer"}}
	events := &fakeEventSink{}
	controller := NewSessionController(&fakeAudioCapture{}, &fakeTranscriber{}, generator, events, Config{})

	result := controller.Generate(context.Background())
	if result.Short != "short answer" || result.Long != "long answer" {
		t.Fatalf("unexpected answers: %+v", result)
	}

	session := controller.Snapshot()
	if session.Answers == nil {
		t.Fatalf("expected answers on session")
	}
	if *session.Answers != result {
		t.Fatalf("session answers diverge from returned pair: %+v", session.Answers)
	}
	if len(events.answerPairs()) != 1 {
		t.Fatalf("expected one answers event")
	}
}

func TestControllerGenerateFallbackIsRenderable(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{
		answers: domain.Answers{Short: domain.FallbackShortAnswer, Long: domain.FallbackLongAnswer},
		err:     errors.New("service down"),
	}
	events := &fakeEventSink{}
	controller := NewSessionController(&fakeAudioCapture{}, &fakeTranscriber{}, generator, events, Config{})

	result := controller.Generate(context.Background())
	if result.Short != domain.FallbackShortAnswer || result.Long != domain.FallbackLongAnswer {
		t.Fatalf("expected fallback pair, got %+v", result)
	}

	codes := events.errorCodes()
	if len(codes) == 0 || codes[0] != domain.ErrorCodeGeneration {
		t.Fatalf("expected structured generation error, got %v", codes)
	}
}

func TestControllerGenerateSnapshotIsolation(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{answers: domain.Answers{Short: "s1", Long: "l1"}}
	controller := NewSessionController(&fakeAudioCapture{}, &fakeTranscriber{}, generator, &fakeEventSink{}, Config{})

	controller.SetTranscript("first question")
	result := controller.Generate(context.Background())

	controller.SetTranscript("second question")

	requests := generator.snapshotRequests()
	if len(requests) != 1 || requests[0].Transcript != "first question" {
		t.Fatalf("in-flight request altered by later edit: %+v", requests)
	}
	if result.Short != "s1" || result.Long != "l1" {
		t.Fatalf("returned answers altered by later edit: %+v", result)
	}
	if got := controller.SnapshotRequest().Transcript; got != "second question" {
		t.Fatalf("expected fresh snapshot to see the edit, got %q", got)
	}
}

func TestControllerGenerateWithTypedTranscript(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{answers: domain.Answers{Short: "s", Long: "l"}}
	events := &fakeEventSink{}
	controller := NewSessionController(&fakeAudioCapture{}, &fakeTranscriber{}, generator, events, Config{})

	controller.SetTranscript("Typed by hand, never recorded.")
	controller.Generate(context.Background())

	requests := generator.snapshotRequests()
	if len(requests) != 1 || requests[0].Transcript != "Typed by hand, never recorded." {
		t.Fatalf("unexpected request: %+v", requests)
	}
	if got := controller.Snapshot().RecordingState; got != domain.RecordingStateIdle {
		t.Fatalf("state must remain idle, got %s", got)
	}
	if len(events.stateReasons()) != 0 {
		t.Fatalf("no state transition expected, got %v", events.stateReasons())
	}
}

func TestControllerGenerateSendsSnapshotVerbatim(t *testing.T) {
	t.Parallel()

	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate_answer" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"short_answer": "short",
			"long_answer":  "long",
		})
	}))
	defer server.Close()

	controller := NewSessionController(
		&fakeAudioCapture{},
		&fakeTranscriber{},
		answers.NewClient(server.URL, 0),
		&fakeEventSink{},
		Config{},
	)

	controller.SetJobPosting("We need a Go engineer.")
	controller.SetResume("Ten years of backend work.")
	controller.SetPosition("Backend Engineer")
	controller.SetModel(domain.ModelGPT4o)
	controller.SetTranscript("Tell me about a challenging project.")

	result := controller.Generate(context.Background())
	if result.Short != "short" || result.Long != "long" {
		t.Fatalf("unexpected answers: %+v", result)
	}

	want := map[string]string{
		"job_posting": "We need a Go engineer.",
		"resume":      "Ten years of backend work.",
		"position":    "Backend Engineer",
		"model":       "gpt-4o",
		"transcript":  "Tell me about a challenging project.",
	}
	for key, value := range want {
		if received[key] != value {
			t.Fatalf("field %q: expected %q, got %q", key, value, received[key])
		}
	}
	if len(received) != len(want) {
		t.Fatalf("unexpected extra fields in request: %v", received)
	}
}

type fakeAudioCapture struct {
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

// fakeAudioSession serves configured chunks in order, then EOF. With
// blockReads it behaves like a live device: reads park until Stop.
type fakeAudioSession struct {
	mu         sync.Mutex
	chunks     [][]byte
	index      int
	stopCalls  int
	blockReads bool
	stopped    chan struct{}
	stopOnce   sync.Once
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.index < len(f.chunks) {
		n := copy(p, f.chunks[f.index])
		f.index++
		f.mu.Unlock()
		return n, nil
	}
	block := f.blockReads
	ch := f.stopChan()
	f.mu.Unlock()

	if block {
		<-ch
	}
	return 0, io.EOF
}

func (f *fakeAudioSession) Close() error { return f.Stop() }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	f.stopCalls++
	ch := f.stopChan()
	f.mu.Unlock()

	f.stopOnce.Do(func() { close(ch) })
	return nil
}

func (f *fakeAudioSession) stopChan() chan struct{} {
	if f.stopped == nil {
		f.stopped = make(chan struct{})
	}
	return f.stopped
}

type fakeTranscriber struct {
	text     string
	err      error
	lastClip domain.AudioClip

	started chan struct{}
	release chan struct{}
}

func (f *fakeTranscriber) Transcribe(_ context.Context, clip domain.AudioClip) (string, error) {
	f.lastClip = clip
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

type fakeGenerator struct {
	mu       sync.Mutex
	answers  domain.Answers
	err      error
	requests []domain.AnswerRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.AnswerRequest) (domain.Answers, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.answers, f.err
}

func (f *fakeGenerator) snapshotRequests() []domain.AnswerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AnswerRequest(nil), f.requests...)
}

type stateEvent struct {
	state  domain.RecordingState
	reason domain.SessionStateReason
}

type errorEvent struct {
	code   domain.ErrorCode
	detail string
}

type fakeEventSink struct {
	mu          sync.Mutex
	states      []stateEvent
	transcripts []string
	answers     []domain.Answers
	errors      []errorEvent
}

func (f *fakeEventSink) RecordingStateChanged(state domain.RecordingState, reason domain.SessionStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) TranscriptReady(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
}

func (f *fakeEventSink) AnswersReady(answers domain.Answers) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answers)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errorEvent{code: code, detail: detail})
}

func (f *fakeEventSink) stateReasons() []domain.SessionStateReason {
	f.mu.Lock()
	defer f.mu.Unlock()
	reasons := make([]domain.SessionStateReason, 0, len(f.states))
	for _, event := range f.states {
		reasons = append(reasons, event.reason)
	}
	return reasons
}

func (f *fakeEventSink) errorCodes() []domain.ErrorCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]domain.ErrorCode, 0, len(f.errors))
	for _, event := range f.errors {
		codes = append(codes, event.code)
	}
	return codes
}

func (f *fakeEventSink) answerPairs() []domain.Answers {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Answers(nil), f.answers...)
}

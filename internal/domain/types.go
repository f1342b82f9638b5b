package domain

// RecordingState models the capture lifecycle. Transitions are cyclic:
// idle -> recording -> transcribing -> idle.
type RecordingState string

const (
	RecordingStateIdle         RecordingState = "idle"
	RecordingStateRecording    RecordingState = "recording"
	RecordingStateTranscribing RecordingState = "transcribing"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonReady               SessionStateReason = "ready"
	SessionReasonRecordingStarted    SessionStateReason = "recording_started"
	SessionReasonTranscribing        SessionStateReason = "transcribing"
	SessionReasonTranscriptReady     SessionStateReason = "transcript_ready"
	SessionReasonTranscriptionFailed SessionStateReason = "transcription_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeDevice        ErrorCode = "device"
	ErrorCodeAudioStop     ErrorCode = "audio_stop"
	ErrorCodeAudioStream   ErrorCode = "audio_stream"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeGeneration    ErrorCode = "generation"
	ErrorCodeClipboard     ErrorCode = "clipboard"
)

// Model is an answer-generation model identifier, passed through to the
// generation service verbatim.
type Model string

const (
	ModelGPT4oMini  Model = "gpt-4o-mini"
	ModelGPT4o      Model = "gpt-4o"
	ModelGPT4Turbo  Model = "gpt-4-turbo"
	ModelGPT35Turbo Model = "gpt-3.5-turbo"
)

// DefaultModel is used until the user picks another one.
const DefaultModel = ModelGPT4oMini

// DefaultPosition seeds the target-position field of a fresh session.
const DefaultPosition = "Python Developer"

// SupportedModels lists the selectable models in display order.
func SupportedModels() []Model {
	return []Model{ModelGPT4oMini, ModelGPT4o, ModelGPT4Turbo, ModelGPT35Turbo}
}

// Fallback text substituted for failed or missing service results. These are
// renderable values, not errors; the real failure travels separately through
// the event sink.
const (
	FallbackTranscript  = "Error transcribing audio."
	FallbackShortAnswer = "Error generating short answer."
	FallbackLongAnswer  = "Error generating long answer."
)

// Answers is one short/long suggested answer pair. The two fields are always
// populated together; a failed field carries its fallback text.
type Answers struct {
	Short string `json:"shortAnswer"`
	Long  string `json:"longAnswer"`
}

// Session is the single live unit of interview context and derived state.
// Answers is nil until the first generation completes.
type Session struct {
	JobPosting     string         `json:"jobPosting"`
	Resume         string         `json:"resume"`
	Position       string         `json:"position"`
	Model          Model          `json:"model"`
	Transcript     string         `json:"transcript"`
	Answers        *Answers       `json:"answers,omitempty"`
	RecordingState RecordingState `json:"recordingState"`
}

// AnswerRequest is an immutable snapshot of session context taken at the
// moment generation is invoked. Field names are fixed for wire compatibility.
type AnswerRequest struct {
	JobPosting string `json:"job_posting"`
	Resume     string `json:"resume"`
	Position   string `json:"position"`
	Model      string `json:"model"`
	Transcript string `json:"transcript"`
}

// AudioClip is a finalized recording: raw chunk bytes concatenated in arrival
// order, tagged with a fixed MIME type.
type AudioClip struct {
	Data     []byte
	MIMEType string
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config stores runtime configuration for the interview copilot.
type Config struct {
	Services ServicesConfig
	Audio    AudioConfig
	Session  SessionConfig
	Backend  BackendConfig
}

// ServicesConfig points the clients at the transcription/generation backend.
type ServicesConfig struct {
	BaseURL           string
	TranscribeTimeout time.Duration
	GenerateTimeout   time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SessionConfig struct {
	ChunkSize       int
	DefaultModel    string
	DefaultPosition string
}

// BackendConfig configures the companion answer/transcription server.
type BackendConfig struct {
	Addr          string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	WhisperModel  string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Services: ServicesConfig{
			BaseURL:           envOrDefault("WINGMAN_SERVICE_BASE_URL", "http://127.0.0.1:8080"),
			TranscribeTimeout: time.Duration(envOrDefaultInt("WINGMAN_TRANSCRIBE_TIMEOUT_MS", 30000)) * time.Millisecond,
			GenerateTimeout:   time.Duration(envOrDefaultInt("WINGMAN_GENERATE_TIMEOUT_MS", 60000)) * time.Millisecond,
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("WINGMAN_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("WINGMAN_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("WINGMAN_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("WINGMAN_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("WINGMAN_CHANNELS", 1),
		},
		Session: SessionConfig{
			ChunkSize:       envOrDefaultInt("WINGMAN_AUDIO_CHUNK_SIZE", 4096),
			DefaultModel:    envOrDefault("WINGMAN_DEFAULT_MODEL", ""),
			DefaultPosition: envOrDefault("WINGMAN_DEFAULT_POSITION", ""),
		},
		Backend: BackendConfig{
			Addr:          envOrDefault("WINGMAN_BACKEND_ADDR", ":8080"),
			OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_API_BASE")),
			WhisperModel:  envOrDefault("WINGMAN_WHISPER_MODEL", "whisper-1"),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 4096
	}
	if cfg.Services.TranscribeTimeout <= 0 {
		cfg.Services.TranscribeTimeout = 30 * time.Second
	}
	if cfg.Services.GenerateTimeout <= 0 {
		cfg.Services.GenerateTimeout = 60 * time.Second
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

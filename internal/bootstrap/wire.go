package bootstrap

import (
	"wingman/internal/audio"
	"wingman/internal/config"
	"wingman/internal/domain"
	"wingman/internal/ports"
	"wingman/internal/providers/answers"
	"wingman/internal/providers/transcribe"
	"wingman/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	sampleRate := cfg.Audio.SampleRate
	channels := cfg.Audio.Channels

	controller := usecase.NewSessionController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		transcribe.NewClient(cfg.Services.BaseURL, cfg.Services.TranscribeTimeout),
		answers.NewClient(cfg.Services.BaseURL, cfg.Services.GenerateTimeout),
		eventSink,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  sampleRate,
				Channels:    channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize:       cfg.Session.ChunkSize,
			DefaultModel:    domain.Model(cfg.Session.DefaultModel),
			DefaultPosition: cfg.Session.DefaultPosition,
			Finalize: func(pcm []byte) domain.AudioClip {
				return audio.FinalizeWAV(pcm, sampleRate, channels)
			},
		},
	)

	return Services{Controller: controller, Config: cfg}, nil
}

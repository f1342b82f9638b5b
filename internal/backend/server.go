package backend

import (
	"context"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"wingman/internal/domain"
)

// SpeechToText converts an uploaded audio file into a transcript.
type SpeechToText interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// AnswerModel drafts one answer tier for a context snapshot.
type AnswerModel interface {
	Answer(ctx context.Context, req domain.AnswerRequest, style AnswerStyle) (string, error)
}

// Server exposes the transcription and answer-generation endpoints that the
// desktop clients call.
type Server struct {
	app   *fiber.App
	stt   SpeechToText
	model AnswerModel
}

func NewServer(stt SpeechToText, model AnswerModel) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			BodyLimit:             32 << 20, // recorded questions stay well under this
			DisableStartupMessage: true,
		}),
		stt:   stt,
		model: model,
	}

	s.app.Post("/transcribe", s.handleTranscribe)
	s.app.Post("/generate_answer", s.handleGenerateAnswer)
	return s
}

// Listen serves until the listener fails.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	header, err := c.FormFile("audio_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "audio_file is required"})
	}

	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read audio_file"})
	}
	defer file.Close()

	transcript, err := s.stt.Transcribe(c.UserContext(), header.Filename, file)
	if err != nil {
		log.Printf("transcription failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Transcription failed."})
	}

	return c.JSON(fiber.Map{"transcript": transcript})
}

func (s *Server) handleGenerateAnswer(c *fiber.Ctx) error {
	var req domain.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if req.Position == "" {
		req.Position = domain.DefaultPosition
	}
	if req.Model == "" {
		req.Model = string(domain.DefaultModel)
	}

	shortAnswer, err := s.model.Answer(c.UserContext(), req, AnswerStyleShort)
	if err != nil {
		log.Printf("short answer generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Answer generation failed."})
	}

	longAnswer, err := s.model.Answer(c.UserContext(), req, AnswerStyleLong)
	if err != nil {
		log.Printf("long answer generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Answer generation failed."})
	}

	return c.JSON(fiber.Map{
		"short_answer": shortAnswer,
		"long_answer":  longAnswer,
	})
}

package backend

import (
	"strings"

	"wingman/internal/domain"
)

// AnswerStyle selects which of the two answer tiers to generate.
type AnswerStyle string

const (
	AnswerStyleShort AnswerStyle = "short"
	AnswerStyleLong  AnswerStyle = "long"
)

const (
	sysPrefix = "You are interviewing for a "
	sysSuffix = " position.\nYou will receive an audio transcription of the question. It may not be complete. You need to understand the question and write an answer to it.\n"

	shortInstruction = "Concisely respond, limiting your answer to 50 words."
	longInstruction  = "Before answering, take a deep breath and think one step at a time. Believe the answer in no more than 150 words."
)

const answerTemperature = 0.7

// buildSystemPrompt assembles the interview persona, the optional job posting
// and resume context, and the length instruction for the requested style.
func buildSystemPrompt(req domain.AnswerRequest, style AnswerStyle) string {
	var b strings.Builder
	b.WriteString(sysPrefix)
	b.WriteString(req.Position)
	b.WriteString(sysSuffix)

	if req.JobPosting != "" {
		b.WriteString("\n\nJob Posting:\n")
		b.WriteString(req.JobPosting)
		b.WriteString("\n\n")
	}
	if req.Resume != "" {
		b.WriteString("\n\nResume:\n")
		b.WriteString(req.Resume)
		b.WriteString("\n\n")
	}

	if style == AnswerStyleShort {
		b.WriteString(shortInstruction)
	} else {
		b.WriteString(longInstruction)
	}
	return b.String()
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/sirupsen/logrus"
)

const (
	// MaxAnswerContextSchemes is how many schemes are listed in a question prompt
	MaxAnswerContextSchemes = 10

	AnswerApology = "I apologize, but I'm unable to process your question at the moment. Please try again later."

	answerSystemPrompt = `You are Sahayak AI, a helpful assistant for Indian government schemes.
Answer in English. Be concise and helpful.
Use only the scheme database provided to give accurate information.`
)

// AnswerService answers a free-text question from a list of schemes
type AnswerService struct {
	generator TextGenerator
}

func NewAnswerService(generator TextGenerator) *AnswerService {
	return &AnswerService{generator: generator}
}

// Answer never fails: an empty reply becomes an apology and an error becomes a message carrying its detail
func (s *AnswerService) Answer(ctx context.Context, question string, schemes []models.Scheme) string {
	reply, err := s.generator.GenerateText(ctx, BuildAnswerPrompt(question, schemes))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AnswerService",
			"operation": "Answer",
		}).WithError(err).Warn("Answer generation failed")
		return fmt.Sprintf("Error: %v", err)
	}

	answer := strings.TrimSpace(reply)
	if answer == "" {
		return AnswerApology
	}
	return answer
}

// BuildAnswerPrompt lists at most the first MaxAnswerContextSchemes schemes, in order, then the question
func BuildAnswerPrompt(question string, schemes []models.Scheme) string {
	if len(schemes) > MaxAnswerContextSchemes {
		schemes = schemes[:MaxAnswerContextSchemes]
	}

	entries := make([]string, len(schemes))
	for i, scheme := range schemes {
		entries[i] = fmt.Sprintf("Scheme %d: %s\nDescription: %s\n---",
			i+1, valueOrNA(scheme.Name), valueOrNA(scheme.ShortDescription))
	}

	return fmt.Sprintf("%s\n\nDatabase (%d schemes):\n%s\n\nQuestion: %s\n\nAnswer based on the schemes above.",
		answerSystemPrompt, len(schemes), strings.Join(entries, "\n\n"), question)
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

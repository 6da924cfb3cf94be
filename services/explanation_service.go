package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fenilmodi00/sahayak-backend/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// DefaultExplanationCacheSize bounds how many scheme explanations stay in memory
const DefaultExplanationCacheSize = 256

// ExplanationService writes a plain-language explanation for one scheme.
// Schemes never change after insert, so successful explanations are cached by id.
type ExplanationService struct {
	generator TextGenerator
	cache     *lru.Cache[string, string]
}

func NewExplanationService(generator TextGenerator, cacheSize int) *ExplanationService {
	if cacheSize <= 0 {
		cacheSize = DefaultExplanationCacheSize
	}
	cache, _ := lru.New[string, string](cacheSize)

	return &ExplanationService{
		generator: generator,
		cache:     cache,
	}
}

func (s *ExplanationService) Explain(ctx context.Context, scheme *models.Scheme) string {
	if cached, ok := s.cache.Get(scheme.ID); ok {
		return cached
	}

	name := scheme.Name
	if strings.TrimSpace(name) == "" {
		name = unknownSchemeName
	}

	reply, err := s.generator.GenerateText(ctx, buildExplanationPrompt(name, schemeDescription(scheme)))
	explanation := strings.TrimSpace(reply)
	if err != nil || explanation == "" {
		logrus.WithFields(logrus.Fields{
			"component": "ExplanationService",
			"operation": "Explain",
			"scheme_id": scheme.ID,
		}).WithError(err).Warn("Explanation generation failed")
		return fmt.Sprintf("I apologize, but I'm unable to generate an explanation for the %s scheme at the moment. Please try again later.", name)
	}

	s.cache.Add(scheme.ID, explanation)
	return explanation
}

// schemeDescription falls back from the stored description to the audit payloads
func schemeDescription(scheme *models.Scheme) string {
	if d := strings.TrimSpace(scheme.ShortDescription); d != "" {
		return d
	}

	var processed struct {
		ShortDescription string `json:"shortDescription"`
	}
	if len(scheme.ProcessedData) > 0 && json.Unmarshal(scheme.ProcessedData, &processed) == nil {
		if d := strings.TrimSpace(processed.ShortDescription); d != "" {
			return d
		}
	}

	var raw models.RawSchemeData
	if len(scheme.RawData) > 0 && json.Unmarshal(scheme.RawData, &raw) == nil {
		return TruncateRunes(strings.TrimSpace(raw.Description), 2000)
	}
	return ""
}

func buildExplanationPrompt(name, description string) string {
	return fmt.Sprintf(`You are Sahayak AI, an expert on Indian government schemes.

Based on this scheme information, provide a clear and detailed explanation in English:

Scheme Name: %s
Description: %s

Please explain:
1. What this scheme is about
2. Who can benefit from it
3. How it helps people
4. Any important details from the description

Keep the explanation helpful, accurate, and easy to understand.`, name, description)
}

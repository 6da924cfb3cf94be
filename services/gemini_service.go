package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/sahayak-backend/shared"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when GEMINI_CHAT_MODEL is unset
const DefaultGeminiModel = "gemini-2.0-flash"

// TextGenerator turns a prompt into model text. An empty string with a nil error means
// the model produced no candidates.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiService is the TextGenerator backed by the Gemini API
type GeminiService struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	metrics *shared.ServiceMetrics
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, timeout time.Duration, metrics *shared.ServiceMetrics) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)

	return &GeminiService{
		client:  client,
		model:   model,
		timeout: timeout,
		metrics: metrics,
	}, nil
}

func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if s.metrics != nil {
		s.metrics.RecordRequest(err == nil, time.Since(start))
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "GeminiService",
			"operation": "GenerateText",
			"duration":  time.Since(start),
		}).WithError(err).Warn("Gemini GenerateContent failed")

		category := shared.ErrorCategoryNetwork
		if ctx.Err() == context.DeadlineExceeded {
			category = shared.ErrorCategoryTimeout
		}
		return "", shared.NewServiceError(category, "GEMINI_REQUEST_FAILED", err.Error(), "GeminiService", "GenerateText", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

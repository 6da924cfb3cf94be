package services

import (
	"context"
	"time"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/sirupsen/logrus"
)

const (
	// ChatSchemeLoadLimit is how many schemes a cache miss reads from storage
	ChatSchemeLoadLimit = 100

	NoSchemesMessage = "No schemes are available yet. Please check back later once schemes have been fetched."
)

// ChatService answers questions from the cached scheme list and records
// authenticated exchanges in the background
type ChatService struct {
	schemes SchemeRepository
	cache   *SchemeCache
	answers *AnswerService
	history ChatHistoryRepository
	queue   *TaskQueue
}

func NewChatService(schemes SchemeRepository, cache *SchemeCache, answers *AnswerService, history ChatHistoryRepository, queue *TaskQueue) *ChatService {
	return &ChatService{
		schemes: schemes,
		cache:   cache,
		answers: answers,
		history: history,
		queue:   queue,
	}
}

// Ask answers without recording history
func (s *ChatService) Ask(ctx context.Context, message string) string {
	schemes, err := s.loadSchemes(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "ChatService",
			"operation": "Ask",
		}).WithError(err).Error("Failed to load schemes for chat")
		return AnswerApology
	}
	if len(schemes) == 0 {
		return NoSchemesMessage
	}
	return s.answers.Answer(ctx, message, schemes)
}

// AskAsUser answers and queues the exchange for the user's history. The response does not wait for the write.
func (s *ChatService) AskAsUser(ctx context.Context, userID, message string) string {
	response := s.Ask(ctx, message)

	if s.queue != nil && s.history != nil {
		entry := &models.ChatHistory{
			UserID:    userID,
			Message:   message,
			Response:  response,
			CreatedAt: time.Now().UTC(),
		}
		s.queue.Submit(Task{
			Name: "save_chat_history",
			Run: func(ctx context.Context) error {
				return s.history.SaveChatHistory(ctx, entry)
			},
		})
	}

	return response
}

// loadSchemes is the cache-aside read: empty storage results are not cached
func (s *ChatService) loadSchemes(ctx context.Context) ([]models.Scheme, error) {
	if schemes, ok := s.cache.Get(); ok {
		return schemes, nil
	}

	schemes, err := s.schemes.ListSchemes(ctx, ChatSchemeLoadLimit)
	if err != nil {
		return nil, err
	}
	if len(schemes) > 0 {
		s.cache.Set(schemes)
	}
	return schemes, nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fenilmodi00/sahayak-backend/models"
)

// ChatHistoryService is the Postgres-backed ChatHistoryRepository
type ChatHistoryService struct {
	DB *sql.DB
}

func NewChatHistoryService(db *sql.DB) *ChatHistoryService {
	return &ChatHistoryService{DB: db}
}

func (s *ChatHistoryService) SaveChatHistory(ctx context.Context, entry *models.ChatHistory) error {
	query := `INSERT INTO chat_history (user_id, message, response, created_at)
              VALUES ($1, $2, $3, $4) RETURNING id`

	if err := s.DB.QueryRowContext(ctx, query, entry.UserID, entry.Message, entry.Response, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

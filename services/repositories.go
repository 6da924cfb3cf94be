package services

import (
	"context"

	"github.com/fenilmodi00/sahayak-backend/models"
)

// Lookups return (nil, nil) when the record does not exist.

type SchemeRepository interface {
	CreateScheme(ctx context.Context, scheme *models.Scheme) error
	GetSchemeByID(ctx context.Context, id string) (*models.Scheme, error)
	GetSchemeBySourceURL(ctx context.Context, sourceURL string) (*models.Scheme, error)
	ListSchemes(ctx context.Context, limit int) ([]models.Scheme, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit int) ([]models.User, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

type ChatHistoryRepository interface {
	SaveChatHistory(ctx context.Context, entry *models.ChatHistory) error
}

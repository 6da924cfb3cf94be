package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fenilmodi00/sahayak-backend/models"
	"github.com/google/uuid"
)

// NotificationService is the Postgres-backed NotificationRepository
type NotificationService struct {
	DB *sql.DB
}

func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (user_id, message, type, scheme_id, is_read, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	if err := s.DB.QueryRowContext(ctx, query, n.UserID, n.Message, n.Type, n.SchemeID, n.IsRead, n.CreatedAt).Scan(&n.ID); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotificationsByUser returns the newest notifications first. Unknown or malformed ids yield an empty list.
func (s *NotificationService) ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	if _, err := uuid.Parse(userID); err != nil {
		return notifications, nil
	}

	query := `SELECT id, user_id, message, type, scheme_id, is_read, created_at
              FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.SchemeID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

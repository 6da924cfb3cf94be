package models

import "time"

// NotificationTypeSchemeUpdate marks notifications created for newly ingested schemes
const NotificationTypeSchemeUpdate = "scheme_update"

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	SchemeID  *string   `json:"scheme_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

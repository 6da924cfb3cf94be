package models

import "time"

// ChatHistory stores one authenticated question/answer exchange
type ChatHistory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// CacheStats reports the state of the in-memory scheme cache
type CacheStats struct {
	Cached        bool       `json:"cached"`
	Count         int        `json:"count"`
	LastRefreshed *time.Time `json:"last_refreshed"`
	Expired       bool       `json:"expired"`
	TTLMinutes    float64    `json:"ttl_minutes"`
}

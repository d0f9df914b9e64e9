// models/chat.go
package models

import (
	"time"
)

type ChatRequest struct {
	Message   string `json:"message" binding:"required,min=1,max=2000"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Reply     string    `json:"reply"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationHistory struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

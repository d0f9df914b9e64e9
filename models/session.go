package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session tracks one visitor conversation. SendEmail flips on with the first
// user message and back off once the transcript has been exported.
type Session struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  string             `bson:"session_id" json:"session_id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	LastActive time.Time          `bson:"last_active" json:"last_active"`
	SendEmail  bool               `bson:"send_email" json:"send_email"`
}

type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Role      string             `bson:"role" json:"role"` // "user" or "assistant"
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

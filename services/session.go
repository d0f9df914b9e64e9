package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/models"
)

// SessionService persists chat sessions and their messages in MongoDB.
type SessionService struct {
	sessions *mongo.Collection
	messages *mongo.Collection
	timeout  time.Duration
}

func NewSessionService(client *mongo.Client, cfg *config.Config) *SessionService {
	db := client.Database(cfg.DBName)
	return &SessionService{
		sessions: db.Collection("sessions"),
		messages: db.Collection("messages"),
		timeout:  time.Duration(cfg.SessionTimeout) * time.Second,
	}
}

// Touch upserts the session and refreshes its activity timestamp. An empty
// sessionID starts a new session. Activity also arms the email export flag.
func (s *SessionService) Touch(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"last_active": now, "send_email": true},
		"$setOnInsert": bson.M{"session_id": sessionID, "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var session models.Session
	err := s.sessions.FindOneAndUpdate(ctx, bson.M{"session_id": sessionID}, update, opts).Decode(&session)
	if err != nil {
		return nil, fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	return &session, nil
}

func (s *SessionService) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.messages.InsertOne(ctx, models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("append %s message: %w", role, err)
	}
	return nil
}

// History returns the session's messages in chronological order.
func (s *SessionService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer cursor.Close(ctx)

	var history []models.ChatMessage
	if err := cursor.All(ctx, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// IdleSessions lists sessions whose transcript is pending export and which
// have been quiet longer than the configured timeout.
func (s *SessionService) IdleSessions(ctx context.Context) ([]models.Session, error) {
	cutoff := time.Now().Add(-s.timeout)
	cursor, err := s.sessions.Find(ctx, bson.M{
		"send_email":  true,
		"last_active": bson.M{"$lte": cutoff},
	})
	if err != nil {
		return nil, fmt.Errorf("find idle sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var idle []models.Session
	if err := cursor.All(ctx, &idle); err != nil {
		return nil, err
	}
	return idle, nil
}

// Transcript renders the whole conversation as plain text for the email body.
func (s *SessionService) Transcript(ctx context.Context, sessionID string) (string, error) {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04:05"), m.Role, m.Content)
	}
	return b.String(), nil
}

// MarkExported disarms the export flag after the transcript email went out.
func (s *SessionService) MarkExported(ctx context.Context, sessionID string) error {
	_, err := s.sessions.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"send_email": false}},
	)
	if err != nil {
		return fmt.Errorf("mark session %s exported: %w", sessionID, err)
	}
	return nil
}

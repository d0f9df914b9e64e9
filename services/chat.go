package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dermo-chatbot-platform/internal/ai"
	"dermo-chatbot-platform/internal/logger"
	"dermo-chatbot-platform/models"
)

// Greeting opens every new conversation. It is shown to the user but not
// fed back into the model.
const Greeting = "Hola, ¿en qué puedo ayudarte hoy?"

// Instructions steer the assistant. Spanish, because the catalog and the
// customers are.
const Instructions = "Sos el asistente virtual de una tienda de dermocosmética. " +
	"Por favor responder la pregunta del usuario siguiendo la conversación. " +
	"Utilizar las funciones disponibles para buscar productos, precios y stock. " +
	"De ser necesario, repreguntar al usuario para obtener más información."

var boldItalic = regexp.MustCompile(`(\*\*.*?\*\*|\*.*?\*)`)

// RemoveBoldItalic strips markdown bold and italic markers that the model
// tends to emit, keeping the text inside them.
func RemoveBoldItalic(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = boldItalic.ReplaceAllStringFunc(line, func(m string) string {
			return strings.Trim(m, "*")
		})
	}
	return strings.Join(lines, "\n")
}

// Replier is the slice of the assistant that ChatService needs.
type Replier interface {
	Reply(ctx context.Context, history []ai.Message) (string, error)
}

// ChatService ties sessions, history and the assistant together.
type ChatService struct {
	assistant Replier
	sessions  *SessionService
}

func NewChatService(assistant Replier, sessions *SessionService) *ChatService {
	return &ChatService{assistant: assistant, sessions: sessions}
}

// Send records the user message, asks the assistant with the full session
// history and records the reply. An empty sessionID starts a new session.
func (c *ChatService) Send(ctx context.Context, sessionID, message string) (*models.ChatResponse, error) {
	session, err := c.sessions.Touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.AppendMessage(ctx, session.SessionID, "user", message); err != nil {
		return nil, err
	}

	stored, err := c.sessions.History(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := c.assistant.Reply(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("assistant reply: %w", err)
	}
	reply = RemoveBoldItalic(reply)

	if err := c.sessions.AppendMessage(ctx, session.SessionID, "assistant", reply); err != nil {
		// The reply already exists, losing it from history is survivable.
		logger.Warn("failed to persist assistant reply", "session_id", session.SessionID, "error", err)
	}

	return &models.ChatResponse{
		Reply:     reply,
		SessionID: session.SessionID,
		Timestamp: time.Now(),
	}, nil
}

// History exposes the stored conversation for the frontend.
func (c *ChatService) History(ctx context.Context, sessionID string) (*models.ConversationHistory, error) {
	messages, err := c.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history := &models.ConversationHistory{
		SessionID: sessionID,
		Messages:  messages,
	}
	if len(messages) > 0 {
		history.CreatedAt = messages[0].Timestamp
		history.UpdatedAt = messages[len(messages)-1].Timestamp
	}
	return history, nil
}

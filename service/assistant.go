package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxChatMessageLength = 2000
	// chatContextTurns is how many stored messages are sent with a prompt.
	chatContextTurns = 20
	// maxStoredMessages caps a session; older turns are dropped first.
	maxStoredMessages = 200
)

// ChatModel produces assistant replies.
type ChatModel interface {
	Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// ChatReply is the result of one assistant turn.
type ChatReply struct {
	Reply    string               `json:"reply"`
	Messages []models.ChatMessage `json:"messages"`
}

// AssistantService keeps one conversation per user with a chat model.
type AssistantService struct {
	chats repository.ChatRepository
	model ChatModel
	now   func() time.Time
}

func NewAssistantService(chats repository.ChatRepository, model ChatModel) *AssistantService {
	return &AssistantService{chats: chats, model: model, now: time.Now}
}

// Send appends message to userID's conversation and returns the reply.
func (s *AssistantService) Send(ctx context.Context, userID primitive.ObjectID, message string) (*ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("Message is required")
	}
	if len([]rune(message)) > MaxChatMessageLength {
		return nil, validationError("message must be at most %d characters", MaxChatMessageLength)
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := session.Messages
	if len(history) > chatContextTurns {
		history = history[len(history)-chatContextTurns:]
	}
	reply, err := s.model.Reply(ctx, history, message)
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "Failed to process message", Err: err}
	}

	now := s.now()
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: models.ChatRoleUser, Content: message, CreatedAt: now},
		models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, CreatedAt: now},
	)
	if len(session.Messages) > maxStoredMessages {
		session.Messages = session.Messages[len(session.Messages)-maxStoredMessages:]
	}
	session.UpdatedAt = now

	if err := s.chats.Save(ctx, session); err != nil {
		return nil, storageError("save chat", err)
	}
	return &ChatReply{Reply: reply, Messages: session.Messages}, nil
}

// History returns userID's conversation, oldest first.
func (s *AssistantService) History(ctx context.Context, userID primitive.ObjectID) ([]models.ChatMessage, error) {
	session, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

func (s *AssistantService) session(ctx context.Context, userID primitive.ObjectID) (*models.ChatSession, error) {
	session, err := s.chats.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.ChatSession{UserID: userID, Messages: []models.ChatMessage{}}, nil
	}
	if err != nil {
		return nil, storageError("find chat", err)
	}
	if session.Messages == nil {
		session.Messages = []models.ChatMessage{}
	}
	return session, nil
}

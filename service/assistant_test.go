package service

import (
	"context"
	"strings"
	"testing"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAssistantConversation(t *testing.T) {
	ctx := context.Background()
	chats := repotest.NewChats()
	model := &fakeModel{reply: "Try Terre d'Hermes."}
	svc := NewAssistantService(chats, model)
	user := primitive.NewObjectID()

	history, err := svc.History(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, history)

	res, err := svc.Send(ctx, user, "  Something woody for autumn?  ")
	require.NoError(t, err)
	assert.Equal(t, "Try Terre d'Hermes.", res.Reply)
	assert.Equal(t, "Something woody for autumn?", model.message)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, models.ChatRoleUser, res.Messages[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, res.Messages[1].Role)

	_, err = svc.Send(ctx, user, "And for summer?")
	require.NoError(t, err)
	assert.Len(t, model.history, 2)

	history, err = svc.History(ctx, user)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestAssistantValidation(t *testing.T) {
	svc := NewAssistantService(repotest.NewChats(), &fakeModel{})
	ctx := context.Background()

	_, err := svc.Send(ctx, primitive.NewObjectID(), "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, primitive.NewObjectID(), strings.Repeat("x", MaxChatMessageLength+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssistantModelFailureKeepsHistory(t *testing.T) {
	chats := repotest.NewChats()
	svc := NewAssistantService(chats, &fakeModel{err: errBoom})
	user := primitive.NewObjectID()

	_, err := svc.Send(context.Background(), user, "hello")
	assert.ErrorIs(t, err, ErrStorage)

	history, err := svc.History(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAssistantTrimsContext(t *testing.T) {
	chats := repotest.NewChats()
	user := primitive.NewObjectID()
	session := &models.ChatSession{UserID: user}
	for i := 0; i < 30; i++ {
		session.Messages = append(session.Messages, models.ChatMessage{Role: models.ChatRoleUser, Content: "m"})
	}
	require.NoError(t, chats.Save(context.Background(), session))

	model := &fakeModel{reply: "ok"}
	_, err := NewAssistantService(chats, model).Send(context.Background(), user, "next")
	require.NoError(t, err)
	assert.Len(t, model.history, chatContextTurns)
}

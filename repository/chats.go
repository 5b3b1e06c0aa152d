package repository

import (
	"context"

	"github.com/raushankrgupta/fragrance-collection/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoChatRepository is the MongoDB ChatRepository.
type MongoChatRepository struct {
	coll *mongo.Collection
}

// NewChatRepository binds the repository to db.
func NewChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{coll: db.Collection(ChatsCollection)}
}

func (r *MongoChatRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.ChatSession, error) {
	var s models.ChatSession
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&s); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

// Save upserts the session keyed by its user. The userId filter seeds new documents.
func (r *MongoChatRepository) Save(ctx context.Context, s *models.ChatSession) error {
	update := bson.M{"$set": bson.M{"messages": s.Messages, "updatedAt": s.UpdatedAt}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"userId": s.UserID}, update, options.Update().SetUpsert(true))
	return mapErr(err)
}

package repository

import (
	"context"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository is the MongoDB UserRepository.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository binds the repository to db.
func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, u)
	return mapErr(err)
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// List returns accounts newest first. An empty status matches every account.
func (r *MongoUserRepository) List(ctx context.Context, status models.AccountStatus, page, limit int) ([]models.User, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, pageOptions(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].Sync()
	}
	return users, total, nil
}

func (r *MongoUserRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.AccountStatus) (*models.User, error) {
	return r.update(ctx, id, bson.M{"status": status})
}

func (r *MongoUserRepository) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	return r.update(ctx, id, bson.M{"role": role})
}

func (r *MongoUserRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	return err
}

func (r *MongoUserRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set, "$currentDate": bson.M{"updatedAt": true}}

	var u models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	u.Sync()
	return &u, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	u.Sync()
	return &u, nil
}

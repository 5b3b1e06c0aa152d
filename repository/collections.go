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

// MongoCollectionRepository is the MongoDB CollectionRepository.
type MongoCollectionRepository struct {
	coll *mongo.Collection
}

// NewCollectionRepository binds the repository to db.
func NewCollectionRepository(db *mongo.Database) *MongoCollectionRepository {
	return &MongoCollectionRepository{coll: db.Collection(CollectionsCollection)}
}

func (r *MongoCollectionRepository) Create(ctx context.Context, e *models.CollectionEntry) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, e)
	return mapErr(err)
}

func (r *MongoCollectionRepository) FindByTriple(ctx context.Context, userID, fragranceID primitive.ObjectID, status models.EntryStatus) (*models.CollectionEntry, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "fragranceId": fragranceID, "status": status})
}

func (r *MongoCollectionRepository) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.CollectionEntry, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (r *MongoCollectionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, status models.EntryStatus, page, limit int) ([]models.CollectionEntry, int64, error) {
	filter := bson.M{"userId": userID, "status": status}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, pageOptions(page, limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	entries := []models.CollectionEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *MongoCollectionRepository) UpdateFields(ctx context.Context, id, userID primitive.ObjectID, patch EntryPatch) (*models.CollectionEntry, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.CollectionEntry
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": patch.SetDoc()}, opts).Decode(&e)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *MongoCollectionRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCollectionRepository) IncrementWear(ctx context.Context, id, userID primitive.ObjectID, at time.Time) (*models.CollectionEntry, error) {
	filter := bson.M{"_id": id, "userId": userID, "status": models.StatusOwned}
	update := bson.M{
		"$inc": bson.M{"wearCount": 1},
		"$set": bson.M{"lastWorn": at, "updatedAt": at},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e models.CollectionEntry
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

// StatusTotals groups a user's entries by status, summing purchasePrice.
// Entries without a price contribute 0.
func (r *MongoCollectionRepository) StatusTotals(ctx context.Context, userID primitive.ObjectID) ([]models.StatusGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$status",
			"count":      bson.M{"$sum": 1},
			"totalSpent": bson.M{"$sum": "$purchasePrice"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	groups := []models.StatusGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *MongoCollectionRepository) findOne(ctx context.Context, filter bson.M) (*models.CollectionEntry, error) {
	var e models.CollectionEntry
	if err := r.coll.FindOne(ctx, filter).Decode(&e); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

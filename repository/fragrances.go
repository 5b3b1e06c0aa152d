package repository

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/raushankrgupta/fragrance-collection/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SortFields are the catalog fields a listing may be ordered by.
var SortFields = map[string]bool{
	"name":         true,
	"brand":        true,
	"rating":       true,
	"totalRatings": true,
	"createdAt":    true,
	"releaseYear":  true,
}

// MongoFragranceRepository is the MongoDB FragranceRepository.
type MongoFragranceRepository struct {
	coll *mongo.Collection
}

// NewFragranceRepository binds the repository to db.
func NewFragranceRepository(db *mongo.Database) *MongoFragranceRepository {
	return &MongoFragranceRepository{coll: db.Collection(FragrancesCollection)}
}

func (r *MongoFragranceRepository) Create(ctx context.Context, f *models.Fragrance) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	// $push and $addToSet need arrays, never null
	f.Sync()
	_, err := r.coll.InsertOne(ctx, f)
	return mapErr(err)
}

func (r *MongoFragranceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fragrance, error) {
	var f models.Fragrance
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, mapErr(err)
	}
	f.Sync()
	return &f, nil
}

// ListQuery translates filter into a MongoDB query document.
func ListQuery(filter FragranceFilter) bson.M {
	q := bson.M{"status": models.FragranceActive}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.Brand != "" {
		q["brand"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Brand), Options: "i"}
	}
	if filter.Gender != "" {
		q["gender"] = filter.Gender
	}
	if filter.Concentration != "" {
		q["concentration"] = filter.Concentration
	}
	if filter.Search != "" {
		q["$text"] = bson.M{"$search": filter.Search}
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		q["sizes.price"] = price
	}
	if filter.MinRating != nil {
		q["rating"] = bson.M{"$gte": *filter.MinRating}
	}
	return q
}

func (r *MongoFragranceRepository) List(ctx context.Context, filter FragranceFilter) ([]models.Fragrance, int64, error) {
	q := ListQuery(filter)

	total, err := r.coll.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if !SortFields[sortBy] {
		sortBy = "name"
	}
	dir := 1
	if filter.SortDesc {
		dir = -1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: 1}}).
		SetSkip(filter.Skip())
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, q, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	fragrances := []models.Fragrance{}
	if err := cursor.All(ctx, &fragrances); err != nil {
		return nil, 0, err
	}
	for i := range fragrances {
		fragrances[i].Sync()
	}
	return fragrances, total, nil
}

func (r *MongoFragranceRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, patch FragrancePatch) (*models.Fragrance, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "status": models.FragranceActive}, bson.M{"$set": patch.SetDoc()})
}

func (r *MongoFragranceRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.FragranceStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":         bson.M{"status": status},
		"$currentDate": bson.M{"updatedAt": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoFragranceRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, totalRatings int) (*models.Fragrance, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set":         bson.M{"rating": rating, "totalRatings": totalRatings},
		"$currentDate": bson.M{"updatedAt": true},
	})
}

func (r *MongoFragranceRepository) PushImage(ctx context.Context, id primitive.ObjectID, img models.Image, tags []string) (*models.Fragrance, error) {
	update := bson.M{
		"$push":        bson.M{"images": img},
		"$currentDate": bson.M{"updatedAt": true},
	}
	if len(tags) > 0 {
		update["$addToSet"] = bson.M{"tags": bson.M{"$each": tags}}
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (r *MongoFragranceRepository) PullImage(ctx context.Context, id, imageID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull":        bson.M{"images": bson.M{"_id": imageID}},
		"$currentDate": bson.M{"updatedAt": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoFragranceRepository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *MongoFragranceRepository) Brands(ctx context.Context) ([]string, error) {
	brands, err := r.distinct(ctx, "brand")
	if err != nil {
		return nil, err
	}
	sort.Strings(brands)
	return brands, nil
}

func (r *MongoFragranceRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, field, bson.M{"status": models.FragranceActive})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected %s value %T", field, v)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *MongoFragranceRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Fragrance, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var f models.Fragrance
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&f); err != nil {
		return nil, mapErr(err)
	}
	f.Sync()
	return &f, nil
}

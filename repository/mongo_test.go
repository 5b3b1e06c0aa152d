package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func mockDB(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}

func TestListQuery(t *testing.T) {
	lo, hi, rating := 10.0, 50.0, 4.0
	q := ListQuery(FragranceFilter{
		Category:  models.CategoryWoody,
		Brand:     "dior.",
		Search:    "vetiver",
		MinPrice:  &lo,
		MaxPrice:  &hi,
		MinRating: &rating,
	})

	assert.Equal(t, models.FragranceActive, q["status"])
	assert.Equal(t, models.CategoryWoody, q["category"])
	assert.Equal(t, primitive.Regex{Pattern: `dior\.`, Options: "i"}, q["brand"])
	assert.Equal(t, bson.M{"$search": "vetiver"}, q["$text"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 50.0}, q["sizes.price"])
	assert.Equal(t, bson.M{"$gte": 4.0}, q["rating"])
	assert.NotContains(t, q, "gender")
}

func TestListQueryOnlyActive(t *testing.T) {
	q := ListQuery(FragranceFilter{})
	assert.Equal(t, bson.M{"status": models.FragranceActive}, q)
}

func TestFragranceFilterSkip(t *testing.T) {
	assert.Equal(t, int64(0), FragranceFilter{Page: 0, Limit: 20}.Skip())
	assert.Equal(t, int64(0), FragranceFilter{Page: 1, Limit: 20}.Skip())
	assert.Equal(t, int64(40), FragranceFilter{Page: 3, Limit: 20}.Skip())
}

func TestFragranceRepository(t *testing.T) {
	mt := mockDB(t)
	ns := "test." + FragrancesCollection

	mt.Run("find by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Sauvage"},
			{Key: "brand", Value: "Dior"},
			{Key: "rating", Value: 4.5},
			{Key: "totalRatings", Value: 8},
			{Key: "status", Value: "active"},
		}))

		f, err := NewFragranceRepository(mt.DB).FindByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, "Sauvage", f.Name)
		assert.Equal(mt, 8, f.TotalRatings)
		assert.True(mt, f.IsActive)
		assert.NotNil(mt, f.Images)
	})

	mt.Run("find by id missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewFragranceRepository(mt.DB).FindByID(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("set rating returns updated document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "rating", Value: 4.3},
			{Key: "totalRatings", Value: 4},
			{Key: "status", Value: "active"},
		}}))

		f, err := NewFragranceRepository(mt.DB).SetRating(context.Background(), id, 4.3, 4)
		require.NoError(mt, err)
		assert.Equal(mt, 4.3, f.Rating)
		assert.Equal(mt, 4, f.TotalRatings)
	})

	mt.Run("update fields sets only patched fields of an active record", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Aventus Absolu"},
			{Key: "rating", Value: 4.3},
			{Key: "totalRatings", Value: 4},
			{Key: "status", Value: "active"},
		}}))

		name := "Aventus Absolu"
		f, err := NewFragranceRepository(mt.DB).UpdateFields(context.Background(), id, FragrancePatch{Name: &name, UpdatedAt: time.Now()})
		require.NoError(mt, err)
		assert.Equal(mt, "Aventus Absolu", f.Name)
		assert.Equal(mt, 4, f.TotalRatings)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "active", started.Command.Lookup("query", "status").StringValue())
		set := started.Command.Lookup("update", "$set").Document()
		assert.Equal(mt, "Aventus Absolu", set.Lookup("name").StringValue())
		_, err = set.LookupErr("rating")
		assert.Error(mt, err)
		_, err = set.LookupErr("status")
		assert.Error(mt, err)
	})

	mt.Run("update fields on archived record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewFragranceRepository(mt.DB).UpdateFields(context.Background(), primitive.NewObjectID(), FragrancePatch{UpdatedAt: time.Now()})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("set status unmatched", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := NewFragranceRepository(mt.DB).SetStatus(context.Background(), primitive.NewObjectID(), models.FragranceArchived)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("brands sorted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"Tom Ford", "Chanel", "Dior"}}))

		brands, err := NewFragranceRepository(mt.DB).Brands(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"Chanel", "Dior", "Tom Ford"}, brands)
	})
}

func TestCollectionRepository(t *testing.T) {
	mt := mockDB(t)
	ns := "test." + CollectionsCollection

	mt.Run("duplicate triple", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := NewCollectionRepository(mt.DB).Create(context.Background(), &models.CollectionEntry{
			UserID:      primitive.NewObjectID(),
			FragranceID: primitive.NewObjectID(),
			Status:      models.StatusOwned,
		})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("increment wear on non-owned entry", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewCollectionRepository(mt.DB).IncrementWear(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("increment wear", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		worn := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: "owned"},
			{Key: "wearCount", Value: 3},
			{Key: "lastWorn", Value: worn},
		}}))

		e, err := NewCollectionRepository(mt.DB).IncrementWear(context.Background(), id, primitive.NewObjectID(), worn)
		require.NoError(mt, err)
		assert.Equal(mt, 3, e.WearCount)
		require.NotNil(mt, e.LastWorn)
		assert.True(mt, worn.Equal(*e.LastWorn))
	})

	mt.Run("update fields never writes wear data", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "status", Value: "owned"},
			{Key: "isFavorite", Value: true},
			{Key: "wearCount", Value: 3},
		}}))

		fav := true
		e, err := NewCollectionRepository(mt.DB).UpdateFields(context.Background(), id, primitive.NewObjectID(), EntryPatch{IsFavorite: &fav, UpdatedAt: time.Now()})
		require.NoError(mt, err)
		assert.True(mt, e.IsFavorite)
		assert.Equal(mt, 3, e.WearCount)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		set := started.Command.Lookup("update", "$set").Document()
		assert.True(mt, set.Lookup("isFavorite").Boolean())
		_, err = set.LookupErr("wearCount")
		assert.Error(mt, err)
		_, err = set.LookupErr("lastWorn")
		assert.Error(mt, err)
	})

	mt.Run("update fields status clash", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		tried := models.StatusTried
		_, err := NewCollectionRepository(mt.DB).UpdateFields(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), EntryPatch{Status: &tried})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("status totals", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "owned"}, {Key: "count", Value: 2}, {Key: "totalSpent", Value: 80.0}},
			bson.D{{Key: "_id", Value: "wishlist"}, {Key: "count", Value: 1}, {Key: "totalSpent", Value: 0}},
		))

		groups, err := NewCollectionRepository(mt.DB).StatusTotals(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		require.Len(mt, groups, 2)
		assert.Equal(mt, models.StatusGroup{Status: models.StatusOwned, Count: 2, TotalSpent: 80}, groups[0])
		assert.Equal(mt, models.StatusGroup{Status: models.StatusWishlist, Count: 1}, groups[1])
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewCollectionRepository(mt.DB).Delete(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUserRepository(t *testing.T) {
	mt := mockDB(t)
	ns := "test." + UsersCollection

	mt.Run("find by username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "username", Value: "alice"},
			{Key: "role", Value: "admin"},
			{Key: "status", Value: "deactivated"},
		}))

		u, err := NewUserRepository(mt.DB).FindByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		assert.True(mt, u.IsAdmin())
		assert.False(mt, u.IsActive)
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Code: 11000, Message: "duplicate"}))

		err := NewUserRepository(mt.DB).Create(context.Background(), &models.User{Username: "alice"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

func TestChatRepositoryMissing(t *testing.T) {
	mt := mockDB(t)

	mt.Run("no session", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test."+ChatsCollection, mtest.FirstBatch))

		_, err := NewChatRepository(mt.DB).FindByUser(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestPatchSetDoc(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	year := 2019
	set := FragrancePatch{ReleaseYear: &year, UpdatedAt: at}.SetDoc()
	assert.Equal(t, bson.M{"releaseYear": 2019, "updatedAt": at}, set)

	notes := "late summer"
	set = EntryPatch{PersonalNotes: &notes, Occasions: []string{"date"}, UpdatedAt: at}.SetDoc()
	assert.Equal(t, bson.M{"personalNotes": "late summer", "occasions": []string{"date"}, "updatedAt": at}, set)
}

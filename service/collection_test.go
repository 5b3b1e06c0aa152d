package service

import (
	"context"
	"testing"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type collectionFixture struct {
	svc        *CollectionService
	entries    *repotest.Collections
	fragrances *repotest.Fragrances
	user       primitive.ObjectID
	fragrance  models.Fragrance
	clock      time.Time
}

func newCollectionFixture(t *testing.T) *collectionFixture {
	t.Helper()
	fx := &collectionFixture{
		entries:    repotest.NewCollections(),
		fragrances: repotest.NewFragrances(),
		user:       primitive.NewObjectID(),
		clock:      time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	fx.fragrance = fx.fragrances.Put(models.Fragrance{
		Name:   "Sauvage",
		Brand:  "Dior",
		Images: []models.Image{{ID: primitive.NewObjectID(), URL: "https://img/1.jpg", Key: "k1"}},
	})
	fx.svc = NewCollectionService(fx.entries, fx.fragrances)
	fx.svc.now = func() time.Time { return fx.clock }
	return fx
}

func price(v float64) *float64 { return &v }

func TestStatsEmpty(t *testing.T) {
	fx := newCollectionFixture(t)

	stats, err := fx.svc.Stats(context.Background(), fx.user)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{}, *stats)
}

func TestStatsSumsOwnedOnly(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: primitive.NewObjectID(), Status: models.StatusOwned, PurchasePrice: price(50)})
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: primitive.NewObjectID(), Status: models.StatusOwned, PurchasePrice: price(30)})
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: primitive.NewObjectID(), Status: models.StatusWishlist})
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: primitive.NewObjectID(), Status: models.StatusSold, PurchasePrice: price(120)})
	fx.entries.Put(models.CollectionEntry{UserID: primitive.NewObjectID(), FragranceID: primitive.NewObjectID(), Status: models.StatusOwned, PurchasePrice: price(999)})

	first, err := fx.svc.Stats(ctx, fx.user)
	require.NoError(t, err)
	assert.Equal(t, models.CollectionStats{Owned: 2, Wishlist: 1, Tried: 0, Sold: 1, TotalSpent: 80}, *first)

	second, err := fx.svc.Stats(ctx, fx.user)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStatsStorageFailure(t *testing.T) {
	fx := newCollectionFixture(t)
	fx.entries.Err = errBoom

	_, err := fx.svc.Stats(context.Background(), fx.user)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestFoldStatsIgnoresUnknownStatus(t *testing.T) {
	stats := foldStats([]models.StatusGroup{
		{Status: "borrowed", Count: 4, TotalSpent: 10},
		{Status: models.StatusTried, Count: 2},
	})
	assert.Equal(t, models.CollectionStats{Tried: 2}, *stats)
}

func TestAddUniquePerStatus(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	in := EntryInput{FragranceID: fx.fragrance.ID.Hex(), Status: models.StatusOwned}

	e, err := fx.svc.Add(ctx, fx.user, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOwned, e.Status)
	assert.Equal(t, 100.0, e.RemainingAmount)
	assert.Zero(t, e.WearCount)
	require.NotNil(t, e.Fragrance)
	assert.Equal(t, "Sauvage", e.Fragrance.Name)

	_, err = fx.svc.Add(ctx, fx.user, in)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Fragrance already in your owned list", Message(err, ""))

	in.Status = models.StatusWishlist
	_, err = fx.svc.Add(ctx, fx.user, in)
	assert.NoError(t, err)

	// another user may own the same fragrance
	_, err = fx.svc.Add(ctx, primitive.NewObjectID(), EntryInput{FragranceID: fx.fragrance.ID.Hex()})
	assert.NoError(t, err)
}

func TestAddDefaultsToOwned(t *testing.T) {
	fx := newCollectionFixture(t)

	e, err := fx.svc.Add(context.Background(), fx.user, EntryInput{FragranceID: fx.fragrance.ID.Hex(), PurchasePrice: price(70)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOwned, e.Status)
	assert.Equal(t, 70.0, *e.PurchasePrice)
}

func TestAddUnknownFragrance(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Add(ctx, fx.user, EntryInput{FragranceID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Fragrance not found", Message(err, ""))

	_, err = fx.svc.Add(ctx, fx.user, EntryInput{FragranceID: "not-an-object-id-at-all!"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = fx.svc.Add(ctx, fx.user, EntryInput{FragranceID: fx.fragrance.ID.Hex(), Status: "borrowed"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkWorn(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	owned := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned, WearCount: 2})

	e, err := fx.svc.MarkWorn(ctx, owned.ID, fx.user)
	require.NoError(t, err)
	assert.Equal(t, 3, e.WearCount)
	require.NotNil(t, e.LastWorn)
	assert.Equal(t, fx.clock, *e.LastWorn)
}

func TestMarkWornRequiresOwned(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	wish := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusWishlist})
	owned := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned})

	_, err := fx.svc.MarkWorn(ctx, wish.ID, fx.user)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Collection item not found", Message(err, ""))

	stored, _ := fx.entries.Get(wish.ID)
	assert.Zero(t, stored.WearCount)
	assert.Nil(t, stored.LastWorn)

	_, err = fx.svc.MarkWorn(ctx, owned.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNeverTouchesWear(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	worn := fx.clock.Add(-time.Hour)
	e := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned, WearCount: 7, LastWorn: &worn})

	notes := "  summer nights "
	fav := true
	updated, err := fx.svc.Update(ctx, e.ID, fx.user, EntryUpdate{PersonalNotes: &notes, IsFavorite: &fav, RemainingAmount: price(40)})
	require.NoError(t, err)
	assert.Equal(t, "summer nights", updated.PersonalNotes)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, 40.0, updated.RemainingAmount)
	assert.Equal(t, 7, updated.WearCount)
	assert.Equal(t, worn, *updated.LastWorn)
}

// wornBeforeUpdate records a wear right before the update lands.
type wornBeforeUpdate struct {
	*repotest.Collections
	at time.Time
}

func (w *wornBeforeUpdate) UpdateFields(ctx context.Context, id, userID primitive.ObjectID, patch repository.EntryPatch) (*models.CollectionEntry, error) {
	if _, err := w.Collections.IncrementWear(ctx, id, userID, w.at); err != nil {
		return nil, err
	}
	return w.Collections.UpdateFields(ctx, id, userID, patch)
}

func TestUpdateKeepsConcurrentWear(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	e := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned, WearCount: 2})
	fx.svc.entries = &wornBeforeUpdate{Collections: fx.entries, at: fx.clock}

	fav := true
	updated, err := fx.svc.Update(ctx, e.ID, fx.user, EntryUpdate{IsFavorite: &fav})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, 3, updated.WearCount)

	stored, _ := fx.entries.Get(e.ID)
	assert.Equal(t, 3, stored.WearCount)
	require.NotNil(t, stored.LastWorn)
	assert.Equal(t, fx.clock, *stored.LastWorn)
}

func TestUpdateStatusConflict(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusTried})
	owned := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned})

	tried := models.StatusTried
	_, err := fx.svc.Update(ctx, owned.ID, fx.user, EntryUpdate{Status: &tried})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateOtherUsersEntry(t *testing.T) {
	fx := newCollectionFixture(t)
	e := fx.entries.Put(models.CollectionEntry{UserID: primitive.NewObjectID(), FragranceID: fx.fragrance.ID, Status: models.StatusOwned})

	_, err := fx.svc.Update(context.Background(), e.ID, fx.user, EntryUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	e := fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned})

	require.NoError(t, fx.svc.Remove(ctx, e.ID, fx.user))
	_, ok := fx.entries.Get(e.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, fx.svc.Remove(ctx, e.ID, fx.user), ErrNotFound)
}

func TestListEnrichesWithSummary(t *testing.T) {
	fx := newCollectionFixture(t)
	ctx := context.Background()
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusOwned, CreatedAt: fx.clock})
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: primitive.NewObjectID(), Status: models.StatusOwned, CreatedAt: fx.clock.Add(time.Minute)})
	fx.entries.Put(models.CollectionEntry{UserID: fx.user, FragranceID: fx.fragrance.ID, Status: models.StatusWishlist})

	page, err := fx.svc.List(ctx, fx.user, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)

	// newest first; the second entry points at a fragrance that no longer exists
	assert.Nil(t, page.Items[0].Fragrance)
	require.NotNil(t, page.Items[1].Fragrance)
	assert.Equal(t, "Dior", page.Items[1].Fragrance.Brand)
	assert.Equal(t, "https://img/1.jpg", page.Items[1].Fragrance.ImageURL)

	_, err = fx.svc.List(ctx, fx.user, "borrowed", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

// Package repository holds the data-access interfaces used by the services
// and their MongoDB implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique index violation.
	ErrDuplicate = errors.New("duplicate key")
)

// Collection names.
const (
	UsersCollection       = "users"
	FragrancesCollection  = "fragrances"
	CollectionsCollection = "collections"
	ChatsCollection       = "chats"
)

// FragranceFilter selects active catalog records. Zero values mean "any".
type FragranceFilter struct {
	Category      models.Category
	Brand         string
	Gender        models.Gender
	Concentration models.Concentration
	Search        string
	MinPrice      *float64
	MaxPrice      *float64
	MinRating     *float64
	SortBy        string
	SortDesc      bool
	Page          int
	Limit         int
}

// Skip is the number of records before the requested page.
func (f FragranceFilter) Skip() int64 {
	if f.Page < 1 {
		return 0
	}
	return int64((f.Page - 1) * f.Limit)
}

// FragrancePatch lists the descriptive fields of a catalog record to
// overwrite. Nil fields are left as stored; rating, images and status have
// no field here.
type FragrancePatch struct {
	Name          *string
	Brand         *string
	Category      *models.Category
	Subcategory   *string
	Description   *string
	Notes         *models.Notes
	Concentration *models.Concentration
	Sizes         []models.SizeOption
	Gender        *models.Gender
	ReleaseYear   *int
	Perfumer      *string
	UpdatedAt     time.Time
}

// SetDoc is the $set document for the patch.
func (p FragrancePatch) SetDoc() bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Brand != nil {
		set["brand"] = *p.Brand
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Subcategory != nil {
		set["subcategory"] = *p.Subcategory
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.Concentration != nil {
		set["concentration"] = *p.Concentration
	}
	if p.Sizes != nil {
		set["sizes"] = p.Sizes
	}
	if p.Gender != nil {
		set["gender"] = *p.Gender
	}
	if p.ReleaseYear != nil {
		set["releaseYear"] = *p.ReleaseYear
	}
	if p.Perfumer != nil {
		set["perfumer"] = *p.Perfumer
	}
	return set
}

// Apply copies the patched fields onto f.
func (p FragrancePatch) Apply(f *models.Fragrance) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Brand != nil {
		f.Brand = *p.Brand
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Subcategory != nil {
		f.Subcategory = *p.Subcategory
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Notes != nil {
		f.Notes = *p.Notes
	}
	if p.Concentration != nil {
		f.Concentration = *p.Concentration
	}
	if p.Sizes != nil {
		f.Sizes = p.Sizes
	}
	if p.Gender != nil {
		f.Gender = *p.Gender
	}
	if p.ReleaseYear != nil {
		f.ReleaseYear = *p.ReleaseYear
	}
	if p.Perfumer != nil {
		f.Perfumer = *p.Perfumer
	}
	f.UpdatedAt = p.UpdatedAt
}

// EntryPatch lists the personal fields of a collection entry to overwrite.
// wearCount and lastWorn are only ever moved by IncrementWear.
type EntryPatch struct {
	Status          *models.EntryStatus
	PurchaseDate    *time.Time
	PurchasePrice   *float64
	Size            *float64
	RemainingAmount *float64
	Rating          *float64
	PersonalNotes   *string
	Occasions       []string
	Seasons         []string
	TimeOfDay       []string
	IsFavorite      *bool
	UpdatedAt       time.Time
}

// SetDoc is the $set document for the patch.
func (p EntryPatch) SetDoc() bson.M {
	set := bson.M{"updatedAt": p.UpdatedAt}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.PurchaseDate != nil {
		set["purchaseDate"] = *p.PurchaseDate
	}
	if p.PurchasePrice != nil {
		set["purchasePrice"] = *p.PurchasePrice
	}
	if p.Size != nil {
		set["size"] = *p.Size
	}
	if p.RemainingAmount != nil {
		set["remainingAmount"] = *p.RemainingAmount
	}
	if p.Rating != nil {
		set["rating"] = *p.Rating
	}
	if p.PersonalNotes != nil {
		set["personalNotes"] = *p.PersonalNotes
	}
	if p.Occasions != nil {
		set["occasions"] = p.Occasions
	}
	if p.Seasons != nil {
		set["seasons"] = p.Seasons
	}
	if p.TimeOfDay != nil {
		set["timeOfDay"] = p.TimeOfDay
	}
	if p.IsFavorite != nil {
		set["isFavorite"] = *p.IsFavorite
	}
	return set
}

// Apply copies the patched fields onto e.
func (p EntryPatch) Apply(e *models.CollectionEntry) {
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.PurchaseDate != nil {
		d := *p.PurchaseDate
		e.PurchaseDate = &d
	}
	if p.PurchasePrice != nil {
		v := *p.PurchasePrice
		e.PurchasePrice = &v
	}
	if p.Size != nil {
		v := *p.Size
		e.Size = &v
	}
	if p.RemainingAmount != nil {
		e.RemainingAmount = *p.RemainingAmount
	}
	if p.Rating != nil {
		v := *p.Rating
		e.Rating = &v
	}
	if p.PersonalNotes != nil {
		e.PersonalNotes = *p.PersonalNotes
	}
	if p.Occasions != nil {
		e.Occasions = p.Occasions
	}
	if p.Seasons != nil {
		e.Seasons = p.Seasons
	}
	if p.TimeOfDay != nil {
		e.TimeOfDay = p.TimeOfDay
	}
	if p.IsFavorite != nil {
		e.IsFavorite = *p.IsFavorite
	}
	e.UpdatedAt = p.UpdatedAt
}

// FragranceRepository stores catalog records.
type FragranceRepository interface {
	Create(ctx context.Context, f *models.Fragrance) error
	// FindByID returns the record whatever its status.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Fragrance, error)
	List(ctx context.Context, filter FragranceFilter) ([]models.Fragrance, int64, error)
	// UpdateFields sets the patched fields of an active record and returns it.
	UpdateFields(ctx context.Context, id primitive.ObjectID, patch FragrancePatch) (*models.Fragrance, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.FragranceStatus) error
	// SetRating overwrites the running mean and count in one write.
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64, totalRatings int) (*models.Fragrance, error)
	PushImage(ctx context.Context, id primitive.ObjectID, img models.Image, tags []string) (*models.Fragrance, error)
	PullImage(ctx context.Context, id, imageID primitive.ObjectID) error
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}

// CollectionRepository stores users' collection entries.
type CollectionRepository interface {
	Create(ctx context.Context, e *models.CollectionEntry) error
	FindByTriple(ctx context.Context, userID, fragranceID primitive.ObjectID, status models.EntryStatus) (*models.CollectionEntry, error)
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.CollectionEntry, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, status models.EntryStatus, page, limit int) ([]models.CollectionEntry, int64, error)
	// UpdateFields sets the patched personal fields of userID's entry.
	UpdateFields(ctx context.Context, id, userID primitive.ObjectID, patch EntryPatch) (*models.CollectionEntry, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	// IncrementWear bumps wearCount of an owned entry and stamps lastWorn.
	IncrementWear(ctx context.Context, id, userID primitive.ObjectID, at time.Time) (*models.CollectionEntry, error)
	StatusTotals(ctx context.Context, userID primitive.ObjectID) ([]models.StatusGroup, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, status models.AccountStatus, page, limit int) ([]models.User, int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.AccountStatus) (*models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// ChatRepository stores assistant conversations, one per user.
type ChatRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.ChatSession, error)
	Save(ctx context.Context, s *models.ChatSession) error
}

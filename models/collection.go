package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryStatus is a user's relationship to a fragrance.
type EntryStatus string

const (
	StatusOwned    EntryStatus = "owned"
	StatusWishlist EntryStatus = "wishlist"
	StatusTried    EntryStatus = "tried"
	StatusSold     EntryStatus = "sold"
)

// EntryStatuses lists every status in display order.
var EntryStatuses = []EntryStatus{StatusOwned, StatusWishlist, StatusTried, StatusSold}

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	for _, v := range EntryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CollectionEntry records one (user, fragrance, status) triple.
type CollectionEntry struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	FragranceID     primitive.ObjectID `bson:"fragranceId" json:"fragranceId"`
	Status          EntryStatus        `bson:"status" json:"status"`
	PurchaseDate    *time.Time         `bson:"purchaseDate,omitempty" json:"purchaseDate,omitempty"`
	PurchasePrice   *float64           `bson:"purchasePrice,omitempty" json:"purchasePrice,omitempty"`
	Size            *float64           `bson:"size,omitempty" json:"size,omitempty"`    // in ml
	RemainingAmount float64            `bson:"remainingAmount" json:"remainingAmount"` // percentage
	Rating          *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	PersonalNotes   string             `bson:"personalNotes,omitempty" json:"personalNotes,omitempty"`
	Occasions       []string           `bson:"occasions,omitempty" json:"occasions,omitempty"`
	Seasons         []string           `bson:"seasons,omitempty" json:"seasons,omitempty"`
	TimeOfDay       []string           `bson:"timeOfDay,omitempty" json:"timeOfDay,omitempty"`
	IsFavorite      bool               `bson:"isFavorite" json:"isFavorite"`
	WearCount       int                `bson:"wearCount" json:"wearCount"`
	LastWorn        *time.Time         `bson:"lastWorn,omitempty" json:"lastWorn,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	Fragrance *FragranceSummary `bson:"-" json:"fragrance,omitempty"`
}

// StatusGroup is one row of the per-status aggregation.
type StatusGroup struct {
	Status     EntryStatus `bson:"_id"`
	Count      int         `bson:"count"`
	TotalSpent float64     `bson:"totalSpent"`
}

// CollectionStats is the derived per-user breakdown. It is never persisted.
type CollectionStats struct {
	Owned      int     `json:"owned"`
	Wishlist   int     `json:"wishlist"`
	Tried      int     `json:"tried"`
	Sold       int     `json:"sold"`
	TotalSpent float64 `json:"totalSpent"`
}

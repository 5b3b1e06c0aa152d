package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raushankrgupta/fragrance-collection/metrics"
	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgEntryNotFound = "Collection item not found"

// EntryInput is the body of an add-to-collection request.
type EntryInput struct {
	FragranceID     string             `json:"fragranceId" validate:"required,len=24"`
	Status          models.EntryStatus `json:"status" validate:"omitempty,oneof=owned wishlist tried sold"`
	PurchaseDate    *time.Time         `json:"purchaseDate"`
	PurchasePrice   *float64           `json:"purchasePrice" validate:"omitempty,gte=0"`
	Size            *float64           `json:"size" validate:"omitempty,gt=0"`
	RemainingAmount *float64           `json:"remainingAmount" validate:"omitempty,gte=0,lte=100"`
	Rating          *float64           `json:"rating" validate:"omitempty,gte=1,lte=5"`
	PersonalNotes   string             `json:"personalNotes" validate:"max=500"`
	Occasions       []string           `json:"occasions"`
	Seasons         []string           `json:"seasons"`
	TimeOfDay       []string           `json:"timeOfDay"`
	IsFavorite      bool               `json:"isFavorite"`
}

// EntryUpdate is the body of a collection update request. Nil fields are
// left untouched; wear data is never writable.
type EntryUpdate struct {
	Status          *models.EntryStatus `json:"status" validate:"omitempty,oneof=owned wishlist tried sold"`
	PurchaseDate    *time.Time          `json:"purchaseDate"`
	PurchasePrice   *float64            `json:"purchasePrice" validate:"omitempty,gte=0"`
	Size            *float64            `json:"size" validate:"omitempty,gt=0"`
	RemainingAmount *float64            `json:"remainingAmount" validate:"omitempty,gte=0,lte=100"`
	Rating          *float64            `json:"rating" validate:"omitempty,gte=1,lte=5"`
	PersonalNotes   *string             `json:"personalNotes" validate:"omitempty,max=500"`
	Occasions       []string            `json:"occasions"`
	Seasons         []string            `json:"seasons"`
	TimeOfDay       []string            `json:"timeOfDay"`
	IsFavorite      *bool               `json:"isFavorite"`
}

// CollectionService manages users' collection entries.
type CollectionService struct {
	entries    repository.CollectionRepository
	fragrances repository.FragranceRepository
	now        func() time.Time
}

func NewCollectionService(entries repository.CollectionRepository, fragrances repository.FragranceRepository) *CollectionService {
	return &CollectionService{entries: entries, fragrances: fragrances, now: time.Now}
}

// Add records a fragrance under a status for userID. A user holds at most
// one entry per (fragrance, status).
func (s *CollectionService) Add(ctx context.Context, userID primitive.ObjectID, in EntryInput) (*models.CollectionEntry, error) {
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, validationError("%s", msg)
	}
	fragranceID, err := primitive.ObjectIDFromHex(in.FragranceID)
	if err != nil {
		return nil, validationError("fragranceId is invalid")
	}
	if in.Status == "" {
		in.Status = models.StatusOwned
	}

	f, err := activeFragrance(ctx, s.fragrances, fragranceID)
	if err != nil {
		return nil, err
	}

	alreadyListed := fmt.Sprintf("Fragrance already in your %s list", in.Status)
	_, err = s.entries.FindByTriple(ctx, userID, fragranceID, in.Status)
	switch {
	case err == nil:
		return nil, conflict(alreadyListed)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storageError("find collection entry", err)
	}

	now := s.now()
	e := &models.CollectionEntry{
		UserID:          userID,
		FragranceID:     fragranceID,
		Status:          in.Status,
		PurchaseDate:    in.PurchaseDate,
		PurchasePrice:   in.PurchasePrice,
		Size:            in.Size,
		RemainingAmount: 100,
		Rating:          in.Rating,
		PersonalNotes:   strings.TrimSpace(in.PersonalNotes),
		Occasions:       in.Occasions,
		Seasons:         in.Seasons,
		TimeOfDay:       in.TimeOfDay,
		IsFavorite:      in.IsFavorite,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.RemainingAmount != nil {
		e.RemainingAmount = *in.RemainingAmount
	}

	// The unique index catches the race between the lookup and the insert.
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, fromRepo("create collection entry", err, "", alreadyListed)
	}
	metrics.CollectionEntries.WithLabelValues("add").Inc()
	e.Fragrance = f.Summary()
	return e, nil
}

// List returns a page of userID's entries under status, newest first, each
// carrying a summary of its fragrance.
func (s *CollectionService) List(ctx context.Context, userID primitive.ObjectID, status models.EntryStatus, page, limit int) (*Page[models.CollectionEntry], error) {
	if status == "" {
		status = models.StatusOwned
	}
	if !status.Valid() {
		return nil, validationError("status must be one of: owned wishlist tried sold")
	}
	page, limit = normalizePage(page, limit)

	entries, total, err := s.entries.ListByUser(ctx, userID, status, page, limit)
	if err != nil {
		return nil, storageError("list collection", err)
	}

	summaries := map[primitive.ObjectID]*models.FragranceSummary{}
	for i := range entries {
		id := entries[i].FragranceID
		summary, seen := summaries[id]
		if !seen {
			f, err := s.fragrances.FindByID(ctx, id)
			switch {
			case err == nil:
				summary = f.Summary()
			case !errors.Is(err, repository.ErrNotFound):
				return nil, storageError("find fragrance", err)
			}
			summaries[id] = summary
		}
		entries[i].Fragrance = summary
	}
	return &Page[models.CollectionEntry]{Items: entries, Total: total, Page: page, Limit: limit}, nil
}

// Update applies a partial update to the personal fields of an entry. Only
// the given fields are written; wear data stays with MarkWorn.
func (s *CollectionService) Update(ctx context.Context, entryID, userID primitive.ObjectID, in EntryUpdate) (*models.CollectionEntry, error) {
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, validationError("%s", msg)
	}

	patch := repository.EntryPatch{
		Status:          in.Status,
		PurchaseDate:    in.PurchaseDate,
		PurchasePrice:   in.PurchasePrice,
		Size:            in.Size,
		RemainingAmount: in.RemainingAmount,
		Rating:          in.Rating,
		PersonalNotes:   trimmed(in.PersonalNotes),
		Occasions:       in.Occasions,
		Seasons:         in.Seasons,
		TimeOfDay:       in.TimeOfDay,
		IsFavorite:      in.IsFavorite,
		UpdatedAt:       s.now(),
	}

	// Only a status change can hit the uniqueness key
	conflictMsg := ""
	if in.Status != nil {
		conflictMsg = fmt.Sprintf("Fragrance already in your %s list", *in.Status)
	}
	e, err := s.entries.UpdateFields(ctx, entryID, userID, patch)
	if err != nil {
		return nil, fromRepo("update collection entry", err, msgEntryNotFound, conflictMsg)
	}
	metrics.CollectionEntries.WithLabelValues("update").Inc()
	return e, nil
}

// Remove deletes an entry.
func (s *CollectionService) Remove(ctx context.Context, entryID, userID primitive.ObjectID) error {
	if err := s.entries.Delete(ctx, entryID, userID); err != nil {
		return fromRepo("delete collection entry", err, msgEntryNotFound, "")
	}
	metrics.CollectionEntries.WithLabelValues("remove").Inc()
	return nil
}

// MarkWorn counts one wear of an owned entry. Entries under any other
// status are reported as not found.
func (s *CollectionService) MarkWorn(ctx context.Context, entryID, userID primitive.ObjectID) (*models.CollectionEntry, error) {
	e, err := s.entries.IncrementWear(ctx, entryID, userID, s.now())
	if err != nil {
		return nil, fromRepo("mark worn", err, msgEntryNotFound, "")
	}
	metrics.CollectionWears.Inc()
	return e, nil
}

// Stats breaks userID's entries down by status. Every status is present;
// TotalSpent sums purchase prices of owned entries only.
func (s *CollectionService) Stats(ctx context.Context, userID primitive.ObjectID) (*models.CollectionStats, error) {
	groups, err := s.entries.StatusTotals(ctx, userID)
	if err != nil {
		return nil, storageError("collection stats", err)
	}
	return foldStats(groups), nil
}

func foldStats(groups []models.StatusGroup) *models.CollectionStats {
	stats := &models.CollectionStats{}
	for _, g := range groups {
		switch g.Status {
		case models.StatusOwned:
			stats.Owned = g.Count
			stats.TotalSpent = g.TotalSpent
		case models.StatusWishlist:
			stats.Wishlist = g.Count
		case models.StatusTried:
			stats.Tried = g.Count
		case models.StatusSold:
			stats.Sold = g.Count
		}
	}
	return stats
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/raushankrgupta/fragrance-collection/metrics"
	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const msgFragranceNotFound = "Fragrance not found"

// FragranceQuery is the catalog listing request as received from clients.
type FragranceQuery struct {
	Category      string   `json:"category" validate:"omitempty,oneof=Fresh Floral Oriental Woody Citrus Gourmand Aquatic Spicy Green Fruity"`
	Brand         string   `json:"brand"`
	Gender        string   `json:"gender" validate:"omitempty,oneof=Men Women Unisex All"`
	Concentration string   `json:"concentration" validate:"omitempty,oneof=EDT EDP Parfum EDC Cologne"`
	Search        string   `json:"search"`
	MinPrice      *float64 `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice      *float64 `json:"maxPrice" validate:"omitempty,gte=0"`
	MinRating     *float64 `json:"minRating" validate:"omitempty,gte=0,lte=5"`
	SortBy        string   `json:"sortBy"`
	SortOrder     string   `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page          int      `json:"page" validate:"gte=0"`
	Limit         int      `json:"limit" validate:"gte=0"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// TotalPages is the number of pages of Limit items needed to hold Total.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 1
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// normalizePage applies the default page and clamps limit to [1, MaxPageSize].
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// FragranceInput is the body of a catalog create request.
type FragranceInput struct {
	Name          string               `json:"name" validate:"required,max=200"`
	Brand         string               `json:"brand" validate:"required,max=100"`
	Category      models.Category      `json:"category" validate:"omitempty,oneof=Fresh Floral Oriental Woody Citrus Gourmand Aquatic Spicy Green Fruity"`
	Subcategory   string               `json:"subcategory" validate:"max=100"`
	Description   string               `json:"description" validate:"max=1000"`
	Notes         models.Notes         `json:"notes"`
	Concentration models.Concentration `json:"concentration" validate:"omitempty,oneof=EDT EDP Parfum EDC Cologne"`
	Sizes         []models.SizeOption  `json:"sizes" validate:"dive"`
	Gender        models.Gender        `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	ReleaseYear   int                  `json:"releaseYear" validate:"omitempty,gte=1900"`
	Perfumer      string               `json:"perfumer" validate:"max=100"`
}

// FragranceUpdate is the body of a catalog update request. Nil fields are
// left untouched.
type FragranceUpdate struct {
	Name          *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Brand         *string               `json:"brand" validate:"omitempty,min=1,max=100"`
	Category      *models.Category      `json:"category" validate:"omitempty,oneof=Fresh Floral Oriental Woody Citrus Gourmand Aquatic Spicy Green Fruity"`
	Subcategory   *string               `json:"subcategory" validate:"omitempty,max=100"`
	Description   *string               `json:"description" validate:"omitempty,max=1000"`
	Notes         *models.Notes         `json:"notes"`
	Concentration *models.Concentration `json:"concentration" validate:"omitempty,oneof=EDT EDP Parfum EDC Cologne"`
	Sizes         []models.SizeOption   `json:"sizes" validate:"omitempty,dive"`
	Gender        *models.Gender        `json:"gender" validate:"omitempty,oneof=Men Women Unisex"`
	ReleaseYear   *int                  `json:"releaseYear" validate:"omitempty,gte=1900"`
	Perfumer      *string               `json:"perfumer" validate:"omitempty,max=100"`
}

// CatalogService manages fragrance records and their ratings.
type CatalogService struct {
	fragrances repository.FragranceRepository
	now        func() time.Time
}

func NewCatalogService(fragrances repository.FragranceRepository) *CatalogService {
	return &CatalogService{fragrances: fragrances, now: time.Now}
}

// List returns one page of active fragrances matching q.
func (s *CatalogService) List(ctx context.Context, q FragranceQuery) (*Page[models.Fragrance], error) {
	if msg := utils.ValidateStruct(q); msg != "" {
		return nil, validationError("%s", msg)
	}
	if q.SortBy != "" && !repository.SortFields[q.SortBy] {
		return nil, validationError("sortBy must be one of: name brand rating totalRatings createdAt releaseYear")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, validationError("minPrice must not exceed maxPrice")
	}

	page, limit := normalizePage(q.Page, q.Limit)
	filter := repository.FragranceFilter{
		Category:      models.Category(q.Category),
		Brand:         strings.TrimSpace(q.Brand),
		Concentration: models.Concentration(q.Concentration),
		Search:        strings.TrimSpace(q.Search),
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		MinRating:     q.MinRating,
		SortBy:        q.SortBy,
		SortDesc:      q.SortOrder == "desc",
		Page:          page,
		Limit:         limit,
	}
	if q.Gender != "All" {
		filter.Gender = models.Gender(q.Gender)
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}

	items, total, err := s.fragrances.List(ctx, filter)
	if err != nil {
		return nil, storageError("list fragrances", err)
	}
	return &Page[models.Fragrance]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Get returns an active fragrance.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.Fragrance, error) {
	return activeFragrance(ctx, s.fragrances, id)
}

// Create adds a catalog record with defaults for omitted enumerations.
func (s *CatalogService) Create(ctx context.Context, in FragranceInput) (*models.Fragrance, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, validationError("%s", msg)
	}
	now := s.now()
	if in.ReleaseYear > now.Year() {
		return nil, validationError("releaseYear must be at most %d", now.Year())
	}

	f := &models.Fragrance{
		Name:          in.Name,
		Brand:         in.Brand,
		Category:      in.Category,
		Subcategory:   strings.TrimSpace(in.Subcategory),
		Description:   strings.TrimSpace(in.Description),
		Notes:         in.Notes,
		Concentration: in.Concentration,
		Sizes:         in.Sizes,
		Gender:        in.Gender,
		ReleaseYear:   in.ReleaseYear,
		Perfumer:      strings.TrimSpace(in.Perfumer),
		Status:        models.FragranceActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if f.Category == "" {
		f.Category = models.CategoryFresh
	}
	if f.Concentration == "" {
		f.Concentration = models.ConcentrationEDT
	}
	if f.Gender == "" {
		f.Gender = models.GenderUnisex
	}

	if err := s.fragrances.Create(ctx, f); err != nil {
		return nil, storageError("create fragrance", err)
	}
	return f, nil
}

// Update applies a partial update to the descriptive fields of an active
// record. Only the given fields are written, so concurrent ratings, image
// changes and archiving are never overwritten.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in FragranceUpdate) (*models.Fragrance, error) {
	if msg := utils.ValidateStruct(in); msg != "" {
		return nil, validationError("%s", msg)
	}

	patch := repository.FragrancePatch{
		Category:      in.Category,
		Notes:         in.Notes,
		Concentration: in.Concentration,
		Sizes:         in.Sizes,
		Gender:        in.Gender,
		Subcategory:   trimmed(in.Subcategory),
		Description:   trimmed(in.Description),
		Perfumer:      trimmed(in.Perfumer),
		Name:          trimmed(in.Name),
		Brand:         trimmed(in.Brand),
		UpdatedAt:     s.now(),
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, validationError("name is required")
	}
	if patch.Brand != nil && *patch.Brand == "" {
		return nil, validationError("brand is required")
	}
	if in.ReleaseYear != nil {
		if *in.ReleaseYear > s.now().Year() {
			return nil, validationError("releaseYear must be at most %d", s.now().Year())
		}
		patch.ReleaseYear = in.ReleaseYear
	}

	f, err := s.fragrances.UpdateFields(ctx, id, patch)
	if err != nil {
		return nil, fromRepo("update fragrance", err, msgFragranceNotFound, "")
	}
	return f, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// Archive hides a record from the catalog. The document is kept.
func (s *CatalogService) Archive(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.fragrances.SetStatus(ctx, id, models.FragranceArchived); err != nil {
		return fromRepo("archive fragrance", err, msgFragranceNotFound, "")
	}
	return nil
}

// SubmitRating folds rating into the fragrance's running mean.
//
// The read and the write are separate calls, so two concurrent submissions
// may race and the later write wins.
func (s *CatalogService) SubmitRating(ctx context.Context, id primitive.ObjectID, rating float64) (*models.Fragrance, error) {
	if !validRating(rating) {
		return nil, validationError("rating must be between 0 and 5")
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mean, total := NextRating(f.Rating, f.TotalRatings, rating)
	updated, err := s.fragrances.SetRating(ctx, id, mean, total)
	if err != nil {
		return nil, fromRepo("update rating", err, msgFragranceNotFound, "")
	}
	metrics.RatingsSubmitted.Inc()
	return updated, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.fragrances.Categories(ctx)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.fragrances.Brands(ctx)
	if err != nil {
		return nil, storageError("list brands", err)
	}
	return brands, nil
}

// activeFragrance loads an active fragrance for other services.
func activeFragrance(ctx context.Context, repo repository.FragranceRepository, id primitive.ObjectID) (*models.Fragrance, error) {
	f, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !f.Active()) {
		return nil, notFound(msgFragranceNotFound)
	}
	if err != nil {
		return nil, storageError("find fragrance", err)
	}
	return f, nil
}

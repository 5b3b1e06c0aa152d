package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the olfactory family of a fragrance.
type Category string

const (
	CategoryFresh    Category = "Fresh"
	CategoryFloral   Category = "Floral"
	CategoryOriental Category = "Oriental"
	CategoryWoody    Category = "Woody"
	CategoryCitrus   Category = "Citrus"
	CategoryGourmand Category = "Gourmand"
	CategoryAquatic  Category = "Aquatic"
	CategorySpicy    Category = "Spicy"
	CategoryGreen    Category = "Green"
	CategoryFruity   Category = "Fruity"
)

// Concentration is the perfume oil strength.
type Concentration string

const (
	ConcentrationEDT     Concentration = "EDT"
	ConcentrationEDP     Concentration = "EDP"
	ConcentrationParfum  Concentration = "Parfum"
	ConcentrationEDC     Concentration = "EDC"
	ConcentrationCologne Concentration = "Cologne"
)

// Gender is the marketed audience of a fragrance.
type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// FragranceStatus tags catalog visibility. Archived records are kept but
// never served by catalog reads.
type FragranceStatus string

const (
	FragranceActive   FragranceStatus = "active"
	FragranceArchived FragranceStatus = "archived"
)

// Notes groups the scent pyramid.
type Notes struct {
	Top    []string `bson:"top,omitempty" json:"top"`
	Middle []string `bson:"middle,omitempty" json:"middle"`
	Base   []string `bson:"base,omitempty" json:"base"`
}

// SizeOption is a bottle volume (ml) and its price.
type SizeOption struct {
	Volume float64 `bson:"volume" json:"volume" validate:"gt=0"`
	Price  float64 `bson:"price" json:"price" validate:"gte=0"`
}

// Image is a stored picture of a fragrance. Key addresses the object in storage.
type Image struct {
	ID  primitive.ObjectID `bson:"_id" json:"id"`
	URL string             `bson:"url" json:"url"`
	Key string             `bson:"key" json:"key"`
}

// Fragrance is a catalog record.
type Fragrance struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Brand         string             `bson:"brand" json:"brand"`
	Category      Category           `bson:"category" json:"category"`
	Subcategory   string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Notes         Notes              `bson:"notes" json:"notes"`
	Concentration Concentration      `bson:"concentration" json:"concentration"`
	Sizes         []SizeOption       `bson:"sizes" json:"sizes"`
	Gender        Gender             `bson:"gender" json:"gender"`
	ReleaseYear   int                `bson:"releaseYear,omitempty" json:"releaseYear,omitempty"`
	Perfumer      string             `bson:"perfumer,omitempty" json:"perfumer,omitempty"`
	Rating        float64            `bson:"rating" json:"rating"`
	TotalRatings  int                `bson:"totalRatings" json:"totalRatings"`
	Images        []Image            `bson:"images" json:"images"`
	Tags          []string           `bson:"tags" json:"tags"`
	Status        FragranceStatus    `bson:"status" json:"status"`
	IsActive      bool               `bson:"-" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the record is visible in the catalog.
func (f *Fragrance) Active() bool {
	return f.Status == FragranceActive
}

// Sync fills derived JSON-only fields and nil slices after a load.
func (f *Fragrance) Sync() {
	f.IsActive = f.Active()
	if f.Images == nil {
		f.Images = []Image{}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Sizes == nil {
		f.Sizes = []SizeOption{}
	}
}

// ImageByID returns the image with the given id.
func (f *Fragrance) ImageByID(id primitive.ObjectID) (Image, bool) {
	for _, img := range f.Images {
		if img.ID == id {
			return img, true
		}
	}
	return Image{}, false
}

// FragranceSummary is the slice of a fragrance embedded in collection listings.
type FragranceSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Brand         string             `json:"brand"`
	Category      Category           `json:"category"`
	Concentration Concentration      `json:"concentration"`
	ImageURL      string             `json:"imageUrl,omitempty"`
}

// Summary builds the embedded summary for f.
func (f *Fragrance) Summary() *FragranceSummary {
	s := &FragranceSummary{
		ID:            f.ID,
		Name:          f.Name,
		Brand:         f.Brand,
		Category:      f.Category,
		Concentration: f.Concentration,
	}
	if len(f.Images) > 0 {
		s.ImageURL = f.Images[0].URL
	}
	return s
}

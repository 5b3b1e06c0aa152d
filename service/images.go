package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raushankrgupta/fragrance-collection/metrics"
	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgImageNotFound = "Image not found"

// ObjectStore keeps image bytes under a key and serves them by URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageTagger labels an image with descriptive tags.
type ImageTagger interface {
	TagImage(ctx context.Context, jpegData []byte) ([]string, error)
}

// ImageFetcher downloads a remote image.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// ImageService attaches pictures to catalog records.
type ImageService struct {
	fragrances repository.FragranceRepository
	store      ObjectStore
	fetcher    ImageFetcher
	tagger     ImageTagger
	logger     zerolog.Logger
	now        func() time.Time
}

// NewImageService builds the service. tagger may be nil to skip tagging.
func NewImageService(fragrances repository.FragranceRepository, store ObjectStore, fetcher ImageFetcher, tagger ImageTagger, logger zerolog.Logger) *ImageService {
	return &ImageService{
		fragrances: fragrances,
		store:      store,
		fetcher:    fetcher,
		tagger:     tagger,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload stores an uploaded image for a fragrance.
func (s *ImageService) Upload(ctx context.Context, fragranceID primitive.ObjectID, filename, contentType string, data []byte) (*models.Fragrance, error) {
	if _, err := activeFragrance(ctx, s.fragrances, fragranceID); err != nil {
		return nil, err
	}
	return s.attach(ctx, fragranceID, filename, contentType, data, "upload")
}

// Import downloads rawURL and stores it as an image of a fragrance.
func (s *ImageService) Import(ctx context.Context, fragranceID primitive.ObjectID, rawURL string) (*models.Fragrance, error) {
	if err := utils.GetValidator().Var(rawURL, "required,url"); err != nil {
		return nil, validationError("url must be a valid URL")
	}
	if _, err := activeFragrance(ctx, s.fragrances, fragranceID); err != nil {
		return nil, err
	}

	data, contentType, err := s.fetcher.FetchImage(ctx, rawURL)
	if errors.Is(err, utils.ErrImageTooLarge) {
		return nil, validationError("image must be at most 5MB")
	}
	if err != nil {
		return nil, validationError("could not download image: %v", err)
	}

	name := "image"
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	return s.attach(ctx, fragranceID, name, contentType, data, "import")
}

func (s *ImageService) attach(ctx context.Context, fragranceID primitive.ObjectID, filename, contentType string, data []byte, source string) (*models.Fragrance, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationError("Only image files are allowed")
	}
	if len(data) > utils.MaxUploadBytes {
		return nil, validationError("image must be at most 5MB")
	}

	processed, err := utils.ProcessImage(data)
	if errors.Is(err, utils.ErrImageDimensions) {
		return nil, validationError("image must be at most %d pixels", utils.MaxImagePixels)
	}
	if err != nil {
		return nil, validationError("could not read image")
	}

	key := ObjectKey(s.now(), uuid.NewString(), filename)
	location, err := s.store.Upload(ctx, key, processed, "image/jpeg")
	if err != nil {
		return nil, &Error{Kind: ErrStorage, Message: "Failed to upload image", Err: err}
	}

	img := models.Image{ID: primitive.NewObjectID(), URL: location, Key: key}
	updated, err := s.fragrances.PushImage(ctx, fragranceID, img, s.tags(ctx, processed))
	if err != nil {
		// The record no longer references the object, so drop it.
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Error().Err(derr).Str("key", key).Msg("failed to remove orphaned image")
		}
		return nil, fromRepo("attach image", err, msgFragranceNotFound, "")
	}
	metrics.ImagesUploaded.WithLabelValues(source).Inc()
	return updated, nil
}

func (s *ImageService) tags(ctx context.Context, jpegData []byte) []string {
	if s.tagger == nil {
		return nil
	}
	tags, err := s.tagger.TagImage(ctx, jpegData)
	if err != nil {
		metrics.ImageTaggingFailures.Inc()
		s.logger.Warn().Err(err).Msg("image tagging failed")
		return nil
	}
	return utils.NormalizeTags(tags)
}

// Delete removes an image from storage and from its fragrance.
func (s *ImageService) Delete(ctx context.Context, fragranceID, imageID primitive.ObjectID) error {
	f, err := activeFragrance(ctx, s.fragrances, fragranceID)
	if err != nil {
		return err
	}
	img, ok := f.ImageByID(imageID)
	if !ok {
		return notFound(msgImageNotFound)
	}

	if err := s.store.Delete(ctx, img.Key); err != nil {
		return &Error{Kind: ErrStorage, Message: "Failed to delete image", Err: err}
	}
	if err := s.fragrances.PullImage(ctx, fragranceID, imageID); err != nil {
		return fromRepo("detach image", err, msgFragranceNotFound, "")
	}
	metrics.ImagesDeleted.Inc()
	return nil
}

// ObjectKey names a stored image: fragrances/{unixMillis}-{id}-{name}.jpg.
func ObjectKey(at time.Time, id, filename string) string {
	return fmt.Sprintf("fragrances/%d-%s-%s.jpg", at.UnixMilli(), id, sanitizeName(filename))
}

func sanitizeName(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if len(name) > 50 {
		name = strings.TrimSuffix(name[:50], "-")
	}
	if name == "" {
		return "image"
	}
	return name
}

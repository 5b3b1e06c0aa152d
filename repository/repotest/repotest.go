// Package repotest provides in-memory repository implementations for tests.
// They follow the MongoDB implementations' semantics closely enough for
// service and handler tests, including uniqueness keys and status filters.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raushankrgupta/fragrance-collection/models"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repository.FragranceRepository  = (*Fragrances)(nil)
	_ repository.CollectionRepository = (*Collections)(nil)
	_ repository.UserRepository       = (*Users)(nil)
	_ repository.ChatRepository       = (*Chats)(nil)
)

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Fragrances is an in-memory FragranceRepository.
type Fragrances struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Fragrance
	// Err, when set, is returned by every call.
	Err error
}

func NewFragrances() *Fragrances {
	return &Fragrances{docs: map[primitive.ObjectID]models.Fragrance{}}
}

func cloneFragrance(f models.Fragrance) models.Fragrance {
	f.Images = append([]models.Image{}, f.Images...)
	f.Tags = append([]string{}, f.Tags...)
	f.Sizes = append([]models.SizeOption{}, f.Sizes...)
	f.Sync()
	return f
}

// Put stores f as-is, for seeding tests.
func (r *Fragrances) Put(f models.Fragrance) models.Fragrance {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if f.Status == "" {
		f.Status = models.FragranceActive
	}
	r.docs[f.ID] = cloneFragrance(f)
	return cloneFragrance(f)
}

// Get returns the stored document, for assertions.
func (r *Fragrances) Get(id primitive.ObjectID) (models.Fragrance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.docs[id]
	return cloneFragrance(f), ok
}

func (r *Fragrances) Create(_ context.Context, f *models.Fragrance) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	f.Sync()
	r.docs[f.ID] = cloneFragrance(*f)
	return nil
}

func (r *Fragrances) FindByID(_ context.Context, id primitive.ObjectID) (*models.Fragrance, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneFragrance(f)
	return &out, nil
}

func matchesFilter(f models.Fragrance, q repository.FragranceFilter) bool {
	if f.Status != models.FragranceActive {
		return false
	}
	if q.Category != "" && f.Category != q.Category {
		return false
	}
	if q.Brand != "" && !strings.Contains(strings.ToLower(f.Brand), strings.ToLower(q.Brand)) {
		return false
	}
	if q.Gender != "" && f.Gender != q.Gender {
		return false
	}
	if q.Concentration != "" && f.Concentration != q.Concentration {
		return false
	}
	if q.Search != "" {
		text := strings.ToLower(f.Name + " " + f.Brand + " " + f.Description)
		hit := false
		for _, word := range strings.Fields(strings.ToLower(q.Search)) {
			if strings.Contains(text, word) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		hit := false
		for _, s := range f.Sizes {
			if (q.MinPrice == nil || s.Price >= *q.MinPrice) && (q.MaxPrice == nil || s.Price <= *q.MaxPrice) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.MinRating != nil && f.Rating < *q.MinRating {
		return false
	}
	return true
}

func lessBy(field string, a, b models.Fragrance) bool {
	switch field {
	case "brand":
		return a.Brand < b.Brand
	case "rating":
		return a.Rating < b.Rating
	case "totalRatings":
		return a.TotalRatings < b.TotalRatings
	case "createdAt":
		return a.CreatedAt.Before(b.CreatedAt)
	case "releaseYear":
		return a.ReleaseYear < b.ReleaseYear
	default:
		return a.Name < b.Name
	}
}

func (r *Fragrances) List(_ context.Context, q repository.FragranceFilter) ([]models.Fragrance, int64, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Fragrance{}
	for _, f := range r.docs {
		if matchesFilter(f, q) {
			out = append(out, cloneFragrance(f))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.SortDesc {
			return lessBy(q.SortBy, out[j], out[i])
		}
		return lessBy(q.SortBy, out[i], out[j])
	})
	return paginate(out, q.Page, q.Limit), int64(len(out)), nil
}

func (r *Fragrances) UpdateFields(_ context.Context, id primitive.ObjectID, patch repository.FragrancePatch) (*models.Fragrance, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.docs[id]
	if !ok || f.Status != models.FragranceActive {
		return nil, repository.ErrNotFound
	}
	f = cloneFragrance(f)
	patch.Apply(&f)
	r.docs[id] = f
	out := cloneFragrance(f)
	return &out, nil
}

func (r *Fragrances) update(id primitive.ObjectID, fn func(*models.Fragrance)) (*models.Fragrance, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	f = cloneFragrance(f)
	fn(&f)
	f.UpdatedAt = time.Now()
	r.docs[id] = f
	out := cloneFragrance(f)
	return &out, nil
}

func (r *Fragrances) SetStatus(_ context.Context, id primitive.ObjectID, status models.FragranceStatus) error {
	_, err := r.update(id, func(f *models.Fragrance) { f.Status = status })
	return err
}

func (r *Fragrances) SetRating(_ context.Context, id primitive.ObjectID, rating float64, totalRatings int) (*models.Fragrance, error) {
	return r.update(id, func(f *models.Fragrance) {
		f.Rating = rating
		f.TotalRatings = totalRatings
	})
}

func (r *Fragrances) PushImage(_ context.Context, id primitive.ObjectID, img models.Image, tags []string) (*models.Fragrance, error) {
	return r.update(id, func(f *models.Fragrance) {
		f.Images = append(f.Images, img)
		for _, t := range tags {
			present := false
			for _, have := range f.Tags {
				if have == t {
					present = true
					break
				}
			}
			if !present {
				f.Tags = append(f.Tags, t)
			}
		}
	})
}

func (r *Fragrances) PullImage(_ context.Context, id, imageID primitive.ObjectID) error {
	_, err := r.update(id, func(f *models.Fragrance) {
		kept := f.Images[:0]
		for _, img := range f.Images {
			if img.ID != imageID {
				kept = append(kept, img)
			}
		}
		f.Images = kept
	})
	return err
}

func (r *Fragrances) distinct(field func(models.Fragrance) string) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, f := range r.docs {
		v := field(f)
		if f.Status != models.FragranceActive || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Fragrances) Categories(context.Context) ([]string, error) {
	return r.distinct(func(f models.Fragrance) string { return string(f.Category) })
}

func (r *Fragrances) Brands(context.Context) ([]string, error) {
	return r.distinct(func(f models.Fragrance) string { return f.Brand })
}

// Collections is an in-memory CollectionRepository enforcing the
// (userId, fragranceId, status) uniqueness key.
type Collections struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.CollectionEntry
	Err  error
}

func NewCollections() *Collections {
	return &Collections{docs: map[primitive.ObjectID]models.CollectionEntry{}}
}

// Put stores e as-is, for seeding tests.
func (r *Collections) Put(e models.CollectionEntry) models.CollectionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.docs[e.ID] = e
	return e
}

// Get returns the stored document, for assertions.
func (r *Collections) Get(id primitive.ObjectID) (models.CollectionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.docs[id]
	return e, ok
}

func (r *Collections) clashes(e models.CollectionEntry) bool {
	for id, other := range r.docs {
		if id != e.ID && other.UserID == e.UserID && other.FragranceID == e.FragranceID && other.Status == e.Status {
			return true
		}
	}
	return false
}

func (r *Collections) Create(_ context.Context, e *models.CollectionEntry) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if r.clashes(*e) {
		return repository.ErrDuplicate
	}
	r.docs[e.ID] = *e
	return nil
}

func (r *Collections) find(match func(models.CollectionEntry) bool) (*models.CollectionEntry, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.docs {
		if match(e) {
			out := e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Collections) FindByTriple(_ context.Context, userID, fragranceID primitive.ObjectID, status models.EntryStatus) (*models.CollectionEntry, error) {
	return r.find(func(e models.CollectionEntry) bool {
		return e.UserID == userID && e.FragranceID == fragranceID && e.Status == status
	})
}

func (r *Collections) FindForUser(_ context.Context, id, userID primitive.ObjectID) (*models.CollectionEntry, error) {
	return r.find(func(e models.CollectionEntry) bool { return e.ID == id && e.UserID == userID })
}

func (r *Collections) ListByUser(_ context.Context, userID primitive.ObjectID, status models.EntryStatus, page, limit int) ([]models.CollectionEntry, int64, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.CollectionEntry{}
	for _, e := range r.docs {
		if e.UserID == userID && e.Status == status {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *Collections) UpdateFields(_ context.Context, id, userID primitive.ObjectID, patch repository.EntryPatch) (*models.CollectionEntry, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.docs[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&e)
	if r.clashes(e) {
		return nil, repository.ErrDuplicate
	}
	r.docs[id] = e
	out := e
	return &out, nil
}

func (r *Collections) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.docs[id]
	if !ok || cur.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *Collections) IncrementWear(_ context.Context, id, userID primitive.ObjectID, at time.Time) (*models.CollectionEntry, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.docs[id]
	if !ok || e.UserID != userID || e.Status != models.StatusOwned {
		return nil, repository.ErrNotFound
	}
	e.WearCount++
	worn := at
	e.LastWorn = &worn
	e.UpdatedAt = at
	r.docs[id] = e
	return &e, nil
}

func (r *Collections) StatusTotals(_ context.Context, userID primitive.ObjectID) ([]models.StatusGroup, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := map[models.EntryStatus]*models.StatusGroup{}
	for _, e := range r.docs {
		if e.UserID != userID {
			continue
		}
		g, ok := byStatus[e.Status]
		if !ok {
			g = &models.StatusGroup{Status: e.Status}
			byStatus[e.Status] = g
		}
		g.Count++
		if e.PurchasePrice != nil {
			g.TotalSpent += *e.PurchasePrice
		}
	}
	out := []models.StatusGroup{}
	for _, g := range byStatus {
		out = append(out, *g)
	}
	return out, nil
}

// Users is an in-memory UserRepository with a unique username key.
type Users struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.User
	Err  error
}

func NewUsers() *Users {
	return &Users{docs: map[primitive.ObjectID]models.User{}}
}

// Put stores u as-is, for seeding tests.
func (r *Users) Put(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Status == "" {
		u.Status = models.AccountActive
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.Sync()
	r.docs[u.ID] = u
	return u
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.docs {
		if other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.docs[u.ID] = *u
	return nil
}

func (r *Users) find(match func(models.User) bool) (*models.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.docs {
		if match(u) {
			out := u
			out.Sync()
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *Users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *Users) List(_ context.Context, status models.AccountStatus, page, limit int) ([]models.User, int64, error) {
	if r.Err != nil {
		return nil, 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.docs {
		if status == "" || u.Status == status {
			u.Sync()
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *Users) update(id primitive.ObjectID, fn func(*models.User)) (*models.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	u.Sync()
	r.docs[id] = u
	return &u, nil
}

func (r *Users) SetStatus(_ context.Context, id primitive.ObjectID, status models.AccountStatus) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Status = status })
}

func (r *Users) SetRole(_ context.Context, id primitive.ObjectID, role models.Role) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *Users) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.update(id, func(u *models.User) { u.LastLogin = &at })
	return err
}

// Chats is an in-memory ChatRepository.
type Chats struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.ChatSession
	Err  error
}

func NewChats() *Chats {
	return &Chats{docs: map[primitive.ObjectID]models.ChatSession{}}
}

func (r *Chats) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.ChatSession, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.docs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Messages = append([]models.ChatMessage{}, s.Messages...)
	return &s, nil
}

func (r *Chats) Save(_ context.Context, s *models.ChatSession) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Messages = append([]models.ChatMessage{}, s.Messages...)
	r.docs[s.UserID] = cp
	return nil
}

package lostitems

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Changes lists the fields an update writes; nil fields are left alone.
type Changes struct {
	Title       *string
	Description *string
	Contact     *string
	Location    *string
	ImageURL    *string
	Status      *string
}

func (c Changes) empty() bool {
	return c.Title == nil && c.Description == nil && c.Contact == nil &&
		c.Location == nil && c.ImageURL == nil && c.Status == nil
}

func (c Changes) set() bson.M {
	set := bson.M{}
	for field, v := range map[string]*string{
		"title":       c.Title,
		"description": c.Description,
		"contact":     c.Contact,
		"location":    c.Location,
		"imageUrl":    c.ImageURL,
		"status":      c.Status,
	} {
		if v != nil {
			set[field] = *v
		}
	}
	return set
}

func (c Changes) applyTo(it *models.LostItem) {
	for _, f := range []struct {
		v   *string
		dst *string
	}{
		{c.Title, &it.Title},
		{c.Description, &it.Description},
		{c.Contact, &it.Contact},
		{c.Location, &it.Location},
		{c.ImageURL, &it.ImageURL},
		{c.Status, &it.Status},
	} {
		if f.v != nil {
			*f.dst = *f.v
		}
	}
}

// Repository persists lost-and-found reports. Get returns (nil, nil) for
// unknown ids.
type Repository interface {
	Create(ctx context.Context, it *models.LostItem) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error)
	List(ctx context.Context) ([]*models.LostItem, error)
	// Update writes only the fields set in ch and returns the stored
	// document, or (nil, nil) for unknown ids.
	Update(ctx context.Context, id primitive.ObjectID, ch Changes) (*models.LostItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, it *models.LostItem) error {
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, it)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error) {
	var it models.LostItem
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// List returns the newest reports first.
func (r *MongoRepository) List(ctx context.Context) ([]*models.LostItem, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "reportedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.LostItem{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, ch Changes) (*models.LostItem, error) {
	if ch.empty() {
		return r.Get(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var it models.LostItem
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": ch.set()}, opts).Decode(&it)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// MemoryRepository keeps reports in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.LostItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[primitive.ObjectID]*models.LostItem)}
}

func (m *MemoryRepository) Create(ctx context.Context, it *models.LostItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	if it.ReportedAt.IsZero() {
		it.ReportedAt = time.Now().UTC()
	}
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*models.LostItem, error) {
	m.mu.RLock()
	out := make([]*models.LostItem, 0, len(m.items))
	for _, it := range m.items {
		cp := *it
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, ch Changes) (*models.LostItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	ch.applyTo(it)
	cp := *it
	return &cp, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

package issues

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

// Moderation is an admin change to an issue; nil fields are left alone.
type Moderation struct {
	Status   *string `json:"status"`
	Response *string `json:"response"`
}

// Repository persists issues. Get and Moderate return (nil, nil) for
// unknown ids.
type Repository interface {
	Create(ctx context.Context, is *models.Issue) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	List(ctx context.Context, issueType string) ([]*models.Issue, error)
	Moderate(ctx context.Context, id primitive.ObjectID, m Moderation) (*models.Issue, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, is *models.Issue) error {
	if is.ID.IsZero() {
		is.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, is)
	return err
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var is models.Issue
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&is); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &is, nil
}

// List returns issues newest first, optionally only those of issueType.
func (r *MongoRepository) List(ctx context.Context, issueType string) ([]*models.Issue, error) {
	filter := bson.M{}
	if issueType != "" {
		filter["type"] = issueType
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Issue{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Moderate(ctx context.Context, id primitive.ObjectID, m Moderation) (*models.Issue, error) {
	set := bson.M{}
	if m.Status != nil {
		set["status"] = *m.Status
	}
	if m.Response != nil {
		set["response"] = *m.Response
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var is models.Issue
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&is); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &is, nil
}

// MemoryRepository keeps issues in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	issues map[primitive.ObjectID]*models.Issue
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (m *MemoryRepository) Create(ctx context.Context, is *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if is.ID.IsZero() {
		is.ID = primitive.NewObjectID()
	}
	if is.CreatedAt.IsZero() {
		is.CreatedAt = time.Now().UTC()
	}
	cp := *is
	m.issues[is.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	is, ok := m.issues[id]
	if !ok {
		return nil, nil
	}
	cp := *is
	return &cp, nil
}

func (m *MemoryRepository) List(ctx context.Context, issueType string) ([]*models.Issue, error) {
	m.mu.RLock()
	out := make([]*models.Issue, 0, len(m.issues))
	for _, is := range m.issues {
		if issueType != "" && is.Type != issueType {
			continue
		}
		cp := *is
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Moderate(ctx context.Context, id primitive.ObjectID, mod Moderation) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	is, ok := m.issues[id]
	if !ok {
		return nil, nil
	}
	if mod.Status != nil {
		is.Status = *mod.Status
	}
	if mod.Response != nil {
		is.Response = *mod.Response
	}
	cp := *is
	return &cp, nil
}

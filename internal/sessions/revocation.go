package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RevocationStore remembers logged-out token ids until the token would have
// expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type revocation struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// MongoRevocations stores revoked ids in a collection with a TTL index on
// expiresAt, so Mongo drops entries once they no longer matter.
type MongoRevocations struct {
	col *mongo.Collection
}

func NewMongoRevocations(col *mongo.Collection) *MongoRevocations {
	return &MongoRevocations{col: col}
}

// EnsureIndexes creates the TTL index.
func (r *MongoRevocations) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, err := r.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (r *MongoRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, revocation{ID: id, ExpiresAt: until.UTC()}, opts)
	return err
}

func (r *MongoRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	var rev revocation
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rev); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	// the TTL monitor runs about once a minute
	return time.Now().UTC().Before(rev.ExpiresAt), nil
}

// MemoryRevocations is a process-local store for tests and single-instance
// development.
type MemoryRevocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{ids: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.ids {
		if !now.Before(exp) {
			delete(m.ids, k)
		}
	}
	m.ids[id] = until
	return nil
}

func (m *MemoryRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.ids[id]
	return ok && m.now().Before(exp), nil
}

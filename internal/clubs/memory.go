package clubs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository keeps clubs in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	clubs map[primitive.ObjectID]*models.Club
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{clubs: make(map[primitive.ObjectID]*models.Club)}
}

func clone(c *models.Club) *models.Club {
	cp := *c
	cp.Members = append([]primitive.ObjectID{}, c.Members...)
	return &cp
}

// nameTaken must be called with the lock held.
func (m *MemoryRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range m.clubs {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) Create(ctx context.Context, c *models.Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(c.Name, primitive.NilObjectID) {
		return errNameTaken
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.clubs[c.ID] = clone(c)
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clubs[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]*models.Club, error) {
	m.mu.RLock()
	out := make([]*models.Club, 0, len(m.clubs))
	for _, c := range m.clubs {
		out = append(out, clone(c))
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*models.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[id]
	if !ok {
		return nil, nil
	}
	if p.Name != "" {
		if m.nameTaken(p.Name, id) {
			return nil, errNameTaken
		}
		c.Name = p.Name
	}
	if p.Description != "" {
		c.Description = p.Description
	}
	if p.Contact != "" {
		c.Contact = p.Contact
	}
	return clone(c), nil
}

func (m *MemoryRepository) AddMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[id]
	if !ok {
		return nil, nil
	}
	if !c.IsMember(member) {
		c.Members = append(c.Members, member)
	}
	return clone(c), nil
}

func (m *MemoryRepository) RemoveMember(ctx context.Context, id, member primitive.ObjectID) (*models.Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[id]
	if !ok {
		return nil, nil
	}
	kept := c.Members[:0]
	for _, mem := range c.Members {
		if mem != member {
			kept = append(kept, mem)
		}
	}
	c.Members = kept
	return clone(c), nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clubs[id]; !ok {
		return false, nil
	}
	delete(m.clubs, id)
	return true, nil
}

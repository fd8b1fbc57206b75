// Package store persists named dashboard views (a filter selection plus a theme).
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"habitboard/domain/filter"
	"habitboard/internal/errors"

	"github.com/google/uuid"
)

// View is a saved dashboard selection
type View struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	State     filter.State `json:"state"`
	Theme     string       `json:"theme"`
	CreatedAt time.Time    `json:"created_at"`
}

// Repository stores saved views
type Repository interface {
	Save(ctx context.Context, v *View) error
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context, limit int) ([]View, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Prepare validates a view before it is stored and fills in the id and timestamp when unset
func Prepare(v *View) error {
	if v.Name == "" {
		return errors.InvalidInput("view name is required")
	}
	if err := v.State.Validate(); err != nil {
		return err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.State = v.State.Normalized()
	return nil
}

func notFound(id uuid.UUID) error {
	return errors.NotFound("view " + id.String())
}

// Memory keeps views in process memory
type Memory struct {
	mu    sync.RWMutex
	views map[uuid.UUID]View
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{views: make(map[uuid.UUID]View)}
}

func (m *Memory) Save(_ context.Context, v *View) error {
	if err := Prepare(v); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[v.ID] = *v
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.views[id]
	if !ok {
		return nil, notFound(id)
	}
	return &v, nil
}

// List returns the newest views first
func (m *Memory) List(_ context.Context, limit int) ([]View, error) {
	m.mu.RLock()
	out := make([]View, 0, len(m.views))
	for _, v := range m.views {
		out = append(out, v)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.views[id]; !ok {
		return notFound(id)
	}
	delete(m.views, id)
	return nil
}

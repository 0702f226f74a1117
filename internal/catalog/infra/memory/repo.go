package memory

import (
	"context"
	"sync"
	"time"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/google/uuid"
)

// Repo keeps the catalog in process, preserving insertion order for listing.
type Repo struct {
	mu    sync.RWMutex
	byID  map[string]domain.Product
	order []string
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[string]domain.Product)}
}

func (r *Repo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, exists := r.byID[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.byID[p.ID] = p
	return p, nil
}

func (r *Repo) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.Product{}, catalogapp.ErrNotFound
	}
	return p, nil
}

func (r *Repo) List(_ context.Context, filter domain.ListFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Product
	for _, id := range r.order {
		p := r.byID[id]
		if !filter.Matches(p) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

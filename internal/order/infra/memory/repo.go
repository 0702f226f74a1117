package memory

import (
	"context"
	"sync"
	"time"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/google/uuid"
)

// Repo is the in-process order store. Orders are indexed by id, by user in
// insertion order, and by (user, idempotency key) for replay detection.
type Repo struct {
	mu     sync.RWMutex
	byID   map[string]domain.Order
	byUser map[string][]string
	byIdem map[string]string
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[string]domain.Order),
		byUser: make(map[string][]string),
		byIdem: make(map[string]string),
	}
}

func idemIndex(userID, key string) string {
	return userID + "\x00" + key
}

func (r *Repo) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check under the write lock so two racing placements with the
	// same key cannot both insert.
	if order.IdempotencyKey != "" {
		if id, ok := r.byIdem[idemIndex(order.UserID, order.IdempotencyKey)]; ok {
			return r.byID[id], nil
		}
	}

	order.ID = uuid.NewString()
	order.UpdatedAt = time.Now().UTC()
	if order.PlacedAt.IsZero() {
		order.PlacedAt = order.UpdatedAt
	}

	r.byID[order.ID] = order
	r.byUser[order.UserID] = append(r.byUser[order.UserID], order.ID)
	if order.IdempotencyKey != "" {
		r.byIdem[idemIndex(order.UserID, order.IdempotencyKey)] = order.ID
	}
	return order, nil
}

func (r *Repo) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byID[id]
	if !ok {
		return domain.Order{}, orderapp.ErrNotFound
	}
	return order, nil
}

func (r *Repo) GetByIdempotencyKey(_ context.Context, userID, key string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdem[idemIndex(userID, key)]
	if !ok {
		return domain.Order{}, orderapp.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]domain.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, r.byID[ids[i]])
	}
	return out, nil
}

func (r *Repo) SetStatus(_ context.Context, id, status string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.byID[id]
	if !ok {
		return domain.Order{}, orderapp.ErrNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.byID[id] = order
	return order, nil
}

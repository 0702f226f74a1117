package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// StorageKey is the fixed key the item sequence is persisted under.
const StorageKey = "cart"

// Store is the single source of truth for the shopper's basket. Every item
// change is reduced through domain.Apply and written through the KV port
// before the call returns; the drawer flag is transient and never persisted.
type Store struct {
	mu    sync.Mutex
	state domain.CartState

	kv     KV
	notify Notifier
	log    *slog.Logger
}

func NewStore(ctx context.Context, kv KV, notify Notifier, log *slog.Logger) *Store {
	if notify == nil {
		notify = NopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{kv: kv, notify: notify, log: log}
	s.state.Items = s.load(ctx)
	return s
}

// load rehydrates the persisted sequence. Missing or malformed data is an
// empty cart, never an error: a broken cart file must not take the session down.
func (s *Store) load(ctx context.Context) []domain.CartItem {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Warn("cart load failed, starting empty", slog.Any("err", err))
		return nil
	}
	if !ok {
		return nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("stored cart is malformed, starting empty", slog.Any("err", err))
		return nil
	}
	return items
}

func (s *Store) AddItem(ctx context.Context, p domain.Product) {
	s.mu.Lock()
	s.apply(ctx, domain.AddItem{Product: p}, true)
	s.mu.Unlock()

	s.notify.Notify(fmt.Sprintf("%s added to cart", p.Name))
}

func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	s.apply(ctx, domain.RemoveItem{ProductID: productID}, true)
	s.mu.Unlock()

	s.notify.Notify("item removed from cart")
}

func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int32) {
	s.mu.Lock()
	s.apply(ctx, domain.SetQuantity{ProductID: productID, Quantity: quantity}, true)
	s.mu.Unlock()
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.apply(ctx, domain.Clear{}, true)
	s.mu.Unlock()

	s.notify.Notify("cart cleared")
}

func (s *Store) Toggle() {
	s.mu.Lock()
	s.apply(context.Background(), domain.Toggle{}, false)
	s.mu.Unlock()
}

func (s *Store) SetOpen(open bool) {
	s.mu.Lock()
	s.apply(context.Background(), domain.SetOpen{Open: open}, false)
	s.mu.Unlock()
}

// apply must be called with the lock held.
func (s *Store) apply(ctx context.Context, cmd domain.Command, persist bool) {
	s.state = domain.Apply(s.state, cmd)
	if !persist {
		return
	}

	raw, err := json.Marshal(s.state.Items)
	if err != nil {
		s.log.Error("cart marshal failed", slog.Any("err", err))
		return
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.log.Error("cart persist failed", slog.Any("err", err))
	}
}

// Snapshot returns a deep copy of the current item sequence, decoupled from
// later mutations.
func (s *Store) Snapshot() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, len(s.state.Items))
	copy(items, s.state.Items)
	return items
}

func (s *Store) TotalItems() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

func (s *Store) TotalPrice() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Open
}

package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

type CartStoreAdapter struct {
	store *cartapp.Store
}

func NewCartStoreAdapter(store *cartapp.Store) *CartStoreAdapter {
	return &CartStoreAdapter{store: store}
}

func (a *CartStoreAdapter) Snapshot(_ context.Context) ([]checkoutapp.CartLine, error) {
	items := a.store.Snapshot()

	lines := make([]checkoutapp.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, checkoutapp.CartLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Image:     it.Product.Image,
			Quantity:  it.Quantity,
		})
	}
	return lines, nil
}

func (a *CartStoreAdapter) Clear(ctx context.Context) error {
	a.store.Clear(ctx)
	return nil
}

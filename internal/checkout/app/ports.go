package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// CartLine is the slice of cart state checkout needs: what and how many.
// Pricing comes from the catalog at checkout time, not from the snapshot.
type CartLine struct {
	ProductID string
	Name      string
	Image     string
	Quantity  int32
}

// Cart is the store boundary: a point-in-time snapshot and the post-placement
// clear. Clear must only ever be called after the order was persisted.
type Cart interface {
	Snapshot(ctx context.Context) ([]CartLine, error)
	Clear(ctx context.Context) error
}

type Product struct {
	ID       string
	Name     string
	Currency string
	Amount   int64
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

// PaymentGateway authorizes a charge. A declined payment is ErrPaymentDeclined;
// anything else is a gateway fault.
type PaymentGateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (domain.Receipt, error)
}

// OrderPlacer persists the draft against the user's order history. The
// idempotency key makes a retried request safe against double submission.
type OrderPlacer interface {
	Place(ctx context.Context, draft domain.OrderDraft, credential, idempotencyKey string) (domain.PlacedOrder, error)
}

type Authn interface {
	CurrentUser() (string, bool)
	Credential() string
}

type Navigator interface {
	NavigateTo(route string)
}

type Notifier interface {
	Notify(message string)
}

type Serviceability interface {
	Check(pincode string) error
}

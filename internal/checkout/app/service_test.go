package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct {
	mu      sync.Mutex
	lines   []app.CartLine
	cleared int
}

func (c *fakeCart) Snapshot(context.Context) ([]app.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]app.CartLine, len(c.lines))
	copy(out, c.lines)
	return out, nil
}

func (c *fakeCart) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	c.lines = nil
	return nil
}

type fakeCatalog struct {
	products map[string]app.Product
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (app.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return app.Product{}, errors.New("product not found")
	}
	return p, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	decline bool
	block   chan struct{}
}

func (g *fakeGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.Receipt, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		}
	}
	if g.decline {
		return domain.Receipt{}, app.ErrPaymentDeclined
	}
	return domain.Receipt{ID: "rcpt-1", Amount: req.Amount, AuthorizedAt: time.Now()}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type placedCall struct {
	draft      domain.OrderDraft
	credential string
	idemKey    string
}

type fakePlacer struct {
	mu    sync.Mutex
	calls []placedCall
	err   error
}

func (p *fakePlacer) Place(_ context.Context, draft domain.OrderDraft, credential, idemKey string) (domain.PlacedOrder, error) {
	p.mu.Lock()
	p.calls = append(p.calls, placedCall{draft: draft, credential: credential, idemKey: idemKey})
	p.mu.Unlock()

	if p.err != nil {
		return domain.PlacedOrder{}, p.err
	}
	return domain.PlacedOrder{ID: "order-1", Status: "CONFIRMED", Total: draft.Total, PlacedAt: draft.PlacedAt}, nil
}

type fakeAuthn struct {
	user  string
	token string
}

func (a fakeAuthn) CurrentUser() (string, bool) { return a.user, a.user != "" }
func (a fakeAuthn) Credential() string          { return a.token }

type fakeNav struct {
	mu     sync.Mutex
	routes []string
}

func (n *fakeNav) NavigateTo(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

type rejectPincode struct{}

var errNoDelivery = errors.New("pincode not serviceable")

func (rejectPincode) Check(string) error { return errNoDelivery }

type fixture struct {
	cart    *fakeCart
	catalog *fakeCatalog
	gateway *fakeGateway
	placer  *fakePlacer
	nav     *fakeNav
	svc     *app.Service
}

// newFixture wires a cart worth exactly 1000: 2 x 250 + 1 x 500.
func newFixture(t *testing.T, mutate func(*app.Deps)) *fixture {
	t.Helper()

	f := &fixture{
		cart: &fakeCart{lines: []app.CartLine{
			{ProductID: "p1", Name: "Silver Ring", Quantity: 2},
			{ProductID: "p2", Name: "Cotton Shirt", Quantity: 1},
		}},
		catalog: &fakeCatalog{products: map[string]app.Product{
			"p1": {ID: "p1", Name: "Silver Ring", Currency: "INR", Amount: 250},
			"p2": {ID: "p2", Name: "Cotton Shirt", Currency: "INR", Amount: 500},
		}},
		gateway: &fakeGateway{},
		placer:  &fakePlacer{},
		nav:     &fakeNav{},
	}

	deps := app.Deps{
		Cart:    f.cart,
		Catalog: f.catalog,
		Gateway: f.gateway,
		Orders:  f.placer,
		Auth:    fakeAuthn{user: "u1", token: "tok-1"},
		Nav:     f.nav,
	}
	if mutate != nil {
		mutate(&deps)
	}
	f.svc = app.NewService(deps)
	return f
}

func validRequest() app.PlaceOrderRequest {
	return app.PlaceOrderRequest{
		ShippingAddress: domain.ShippingAddress{
			Name:    "A Shopper",
			Line1:   "12 MG Road",
			City:    "Bengaluru",
			State:   "KA",
			Pincode: "560001",
		},
		PaymentMode: "card",
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPlaced, res.Status)
	assert.Equal(t, app.RouteOrders, res.Redirect)
	assert.Equal(t, "order-1", res.Order.ID)

	require.Len(t, f.placer.calls, 1, "exactly one order-create request")
	call := f.placer.calls[0]
	assert.Equal(t, int64(1000), call.draft.Total.Amount)
	assert.Equal(t, "INR", call.draft.Total.Currency)
	assert.Equal(t, "tok-1", call.credential)
	assert.NotEmpty(t, call.idemKey)
	assert.Equal(t, "CONFIRMED", call.draft.Status)
	assert.Equal(t, "560001", call.draft.ShippingAddress.Pincode)
	assert.Equal(t, "rcpt-1", call.draft.ReceiptID)

	require.Len(t, call.draft.Lines, 2)
	assert.Equal(t, int64(500), call.draft.Lines[0].LineTotal.Amount)
	assert.Equal(t, int64(500), call.draft.Lines[1].LineTotal.Amount)

	assert.Equal(t, 1, f.cart.cleared, "cart cleared exactly once, after persistence")
	assert.Equal(t, []string{app.RouteOrders}, f.nav.routes)
}

func TestPlaceOrderPaymentFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.gateway.decline = true

	res, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, app.ErrPaymentDeclined)

	assert.Equal(t, domain.StatusPaymentFailed, res.Status)
	assert.Empty(t, f.placer.calls, "no persistence call after declined payment")
	assert.Equal(t, 0, f.cart.cleared, "cart must keep its contents")
}

func TestPlaceOrderPersistenceFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.placer.err = errors.New("order service: http 500")

	res, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, app.ErrOrderNotPersisted)

	assert.Equal(t, domain.StatusOrderFailed, res.Status)
	assert.Len(t, f.placer.calls, 1)
	assert.Equal(t, 0, f.cart.cleared, "no silent loss of the intended order")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t, nil)
	f.cart.lines = nil

	_, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, app.ErrEmptyCart)

	assert.Equal(t, 0, f.gateway.callCount(), "payment simulation never invoked")
	assert.Empty(t, f.placer.calls)
}

func TestPlaceOrderUnauthenticated(t *testing.T) {
	f := newFixture(t, func(d *app.Deps) {
		d.Auth = fakeAuthn{}
	})

	res, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, app.ErrNotAuthenticated)

	assert.Equal(t, app.RouteLogin, res.Redirect)
	assert.Equal(t, []string{app.RouteLogin}, f.nav.routes)
	assert.Equal(t, 0, f.gateway.callCount())
	assert.Empty(t, f.placer.calls)
}

func TestPlaceOrderMissingPaymentMode(t *testing.T) {
	f := newFixture(t, nil)

	req := validRequest()
	req.PaymentMode = "  "
	_, err := f.svc.PlaceOrder(context.Background(), req)
	require.ErrorIs(t, err, app.ErrInvalidInput)

	assert.Equal(t, 0, f.gateway.callCount())
}

func TestPlaceOrderUnserviceablePincode(t *testing.T) {
	f := newFixture(t, func(d *app.Deps) {
		d.Shipping = rejectPincode{}
	})

	_, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, errNoDelivery)

	assert.Equal(t, 0, f.gateway.callCount())
	assert.Empty(t, f.placer.calls)
	assert.Equal(t, 0, f.cart.cleared)
}

func TestPlaceOrderRejectsOverlappingSubmission(t *testing.T) {
	f := newFixture(t, nil)
	f.gateway.block = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.svc.PlaceOrder(context.Background(), validRequest())
		firstDone <- err
	}()

	// Wait until the first attempt is inside the gateway.
	require.Eventually(t, func() bool {
		return f.gateway.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	_, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.ErrorIs(t, err, app.ErrCheckoutInFlight)

	close(f.gateway.block)
	require.NoError(t, <-firstDone)
	require.Len(t, f.placer.calls, 1, "only the first attempt persists an order")
}

func TestPlaceOrderFreshIdempotencyKeyPerAttempt(t *testing.T) {
	f := newFixture(t, nil)
	f.placer.err = errors.New("down")

	_, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.Error(t, err)

	f.placer.err = nil
	// The fixture cart still has its lines because Clear never ran.
	_, err = f.svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, f.placer.calls, 2)
	assert.NotEqual(t, f.placer.calls[0].idemKey, f.placer.calls[1].idemKey,
		"each submission is a distinct attempt with its own key")
}

func TestStatusTracksAttemptLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, domain.StatusIdle, f.svc.Status())

	_, err := f.svc.PlaceOrder(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, f.svc.Status())

	// A follow-up failed attempt moves the status again.
	f.cart.lines = []app.CartLine{{ProductID: "p1", Quantity: 1}}
	f.gateway.decline = true
	_, err = f.svc.PlaceOrder(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, domain.StatusPaymentFailed, f.svc.Status())
}

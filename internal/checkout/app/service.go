package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	RouteLogin  = "/login"
	RouteOrders = "/orders"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCheckoutInFlight  = errors.New("checkout already in flight")
	ErrPaymentDeclined   = errors.New("payment declined")
	ErrOrderNotPersisted = errors.New("order could not be persisted")
)

// Service runs the checkout protocol: preconditions, charge, persist, clear.
// The two durable effects are ordered so no path empties the cart without a
// persisted order, and no persisted order leaves the cart filled.
type Service struct {
	cart     Cart
	catalog  CatalogReader
	gateway  PaymentGateway
	orders   OrderPlacer
	auth     Authn
	nav      Navigator
	notify   Notifier
	shipping Serviceability
	log      *slog.Logger

	maxConcurrent int

	mu       sync.Mutex
	inFlight bool
	status   domain.Status
}

type Deps struct {
	Cart     Cart
	Catalog  CatalogReader
	Gateway  PaymentGateway
	Orders   OrderPlacer
	Auth     Authn
	Nav      Navigator
	Notify   Notifier
	Shipping Serviceability
	Log      *slog.Logger

	MaxConcurrent int
}

func NewService(d Deps) *Service {
	if d.MaxConcurrent <= 0 {
		d.MaxConcurrent = 10
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Notify == nil {
		d.Notify = nopNotifier{}
	}
	if d.Nav == nil {
		d.Nav = nopNavigator{}
	}

	return &Service{
		cart:          d.Cart,
		catalog:       d.Catalog,
		gateway:       d.Gateway,
		orders:        d.Orders,
		auth:          d.Auth,
		nav:           d.Nav,
		notify:        d.Notify,
		shipping:      d.Shipping,
		log:           d.Log,
		maxConcurrent: d.MaxConcurrent,
		status:        domain.StatusIdle,
	}
}

type PlaceOrderRequest struct {
	ShippingAddress domain.ShippingAddress
	PaymentMode     string
}

type Result struct {
	Status   domain.Status
	Order    domain.PlacedOrder
	Redirect string
}

// PlaceOrder executes one checkout attempt. Every failure is terminal for the
// attempt and leaves the cart untouched; the caller resubmits to retry.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (Result, error) {
	user, ok := s.auth.CurrentUser()
	if !ok {
		s.nav.NavigateTo(RouteLogin)
		return Result{Status: s.Status(), Redirect: RouteLogin}, ErrNotAuthenticated
	}

	if strings.TrimSpace(req.PaymentMode) == "" {
		return Result{Status: s.Status()}, fmt.Errorf("payment mode: %w", ErrInvalidInput)
	}

	release, err := s.acquire()
	if err != nil {
		return Result{Status: s.Status()}, err
	}
	defer release()

	lines, err := s.cart.Snapshot(ctx)
	if err != nil {
		return Result{Status: s.Status()}, fmt.Errorf("cart snapshot: %w", err)
	}
	if len(lines) == 0 {
		s.notify.Notify("your cart is empty")
		return Result{Status: s.Status()}, ErrEmptyCart
	}

	if s.shipping != nil {
		if err := s.shipping.Check(req.ShippingAddress.Pincode); err != nil {
			s.notify.Notify("we do not deliver to this pincode yet")
			return Result{Status: s.Status()}, fmt.Errorf("pincode %s: %w", req.ShippingAddress.Pincode, err)
		}
	}

	s.setStatus(domain.StatusProcessing)

	orderLines, total, err := s.price(ctx, lines)
	if err != nil {
		s.setStatus(domain.StatusIdle)
		return Result{Status: domain.StatusIdle}, fmt.Errorf("pricing cart: %w", err)
	}

	receipt, err := s.gateway.Charge(ctx, domain.ChargeRequest{
		UserID:      user,
		Amount:      total,
		PaymentMode: req.PaymentMode,
	})
	if err != nil {
		s.setStatus(domain.StatusPaymentFailed)
		s.notify.Notify("payment failed, please try again")
		return Result{Status: domain.StatusPaymentFailed}, fmt.Errorf("charge: %w", err)
	}

	draft := domain.OrderDraft{
		Lines:           orderLines,
		Total:           total,
		PlacedAt:        time.Now().UTC(),
		Status:          "CONFIRMED",
		ShippingAddress: req.ShippingAddress,
		PaymentMode:     req.PaymentMode,
		ReceiptID:       receipt.ID,
	}

	placed, err := s.orders.Place(ctx, draft, s.auth.Credential(), uuid.NewString())
	if err != nil {
		// The cart is deliberately left alone so the user can retry without
		// re-adding items.
		s.setStatus(domain.StatusOrderFailed)
		s.notify.Notify("order could not be placed, your cart is untouched")
		return Result{Status: domain.StatusOrderFailed}, fmt.Errorf("%w: %v", ErrOrderNotPersisted, err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.log.Warn("cart clear after placement failed", slog.Any("err", err), slog.String("order_id", placed.ID))
	}

	s.setStatus(domain.StatusPlaced)
	s.notify.Notify("order placed")
	s.nav.NavigateTo(RouteOrders)

	return Result{Status: domain.StatusPlaced, Order: placed, Redirect: RouteOrders}, nil
}

// price resolves current catalog prices for every line concurrently, in the
// same position as its input so line order is preserved.
func (s *Service) price(ctx context.Context, lines []CartLine) ([]domain.OrderLine, domain.Money, error) {
	out := make([]domain.OrderLine, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range lines {
		idx := idx
		g.Go(func() error {
			ln := lines[idx]
			if ln.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", ln.Quantity)
			}

			product, err := s.catalog.GetProduct(ctx, ln.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", ln.ProductID, err)
			}

			out[idx] = domain.OrderLine{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     ln.Image,
				Quantity:  ln.Quantity,
				UnitPrice: domain.Money{Currency: product.Currency, Amount: product.Amount},
				LineTotal: domain.Money{Currency: product.Currency, Amount: product.Amount * int64(ln.Quantity)},
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, domain.Money{}, err
	}

	total := domain.Money{Currency: out[0].LineTotal.Currency}
	for _, ln := range out {
		total.Amount += ln.LineTotal.Amount
	}
	return out, total, nil
}

// acquire takes the single-submission lock. A second call while an attempt is
// running fails instead of queueing, which is the double-click guard.
func (s *Service) acquire() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return nil, ErrCheckoutInFlight
	}
	s.inFlight = true

	return func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}, nil
}

func (s *Service) setStatus(st domain.Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Service) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type nopNavigator struct{}

func (nopNavigator) NavigateTo(string) {}

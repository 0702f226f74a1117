package gateway

import (
	"context"
	"math/rand"
	"time"

	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/google/uuid"
)

// Simulated stands in for a real payment processor. Approval rate and latency
// are configuration, not constants; a real gateway adapter replaces this whole
// type behind the same port.
type Simulated struct {
	ApproveRate float64
	Delay       time.Duration

	// Rand overrides the outcome source, for deterministic tests.
	Rand func() float64
}

func NewSimulated(approveRate float64, delay time.Duration) *Simulated {
	return &Simulated{ApproveRate: approveRate, Delay: delay}
}

func (g *Simulated) Charge(ctx context.Context, req domain.ChargeRequest) (domain.Receipt, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}

	roll := rand.Float64
	if g.Rand != nil {
		roll = g.Rand
	}
	if roll() >= g.ApproveRate {
		return domain.Receipt{}, checkoutapp.ErrPaymentDeclined
	}

	return domain.Receipt{
		ID:           uuid.NewString(),
		Amount:       req.Amount,
		AuthorizedAt: time.Now().UTC(),
	}, nil
}

// Approve authorizes everything. Test double.
type Approve struct{}

func (Approve) Charge(_ context.Context, req domain.ChargeRequest) (domain.Receipt, error) {
	return domain.Receipt{ID: uuid.NewString(), Amount: req.Amount, AuthorizedAt: time.Now().UTC()}, nil
}

// Decline refuses everything. Test double.
type Decline struct{}

func (Decline) Charge(context.Context, domain.ChargeRequest) (domain.Receipt, error) {
	return domain.Receipt{}, checkoutapp.ErrPaymentDeclined
}

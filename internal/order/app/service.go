package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo OrderRepo
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

// PlaceOrder validates and stores an order exactly once per idempotency key.
// A replayed key returns the already-stored order instead of a duplicate.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.Order, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return domain.Order{}, fmt.Errorf("user id is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return domain.Order{}, fmt.Errorf("currency is required: %w", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order has no items: %w", ErrInvalidInput)
	}

	var subTotal int64
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("item %d: quantity must be positive, got %d: %w", i, item.Quantity, ErrInvalidInput)
		}
		if item.UnitAmount < 0 {
			return domain.Order{}, fmt.Errorf("item %d: unit amount cannot be negative, got %d: %w", i, item.UnitAmount, ErrInvalidInput)
		}
		expected := item.UnitAmount * int64(item.Quantity)
		if item.LineTotalAmount != expected {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch: %w", i, ErrInvalidInput)
		}
		subTotal += expected
	}

	if req.TotalAmount != subTotal {
		return domain.Order{}, fmt.Errorf("total %d does not match item sum %d: %w", req.TotalAmount, subTotal, ErrInvalidInput)
	}

	if req.IdempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return domain.Order{}, err
		}
	}

	placedAt := req.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	return s.repo.Create(ctx, domain.Order{
		UserID:         req.UserID,
		Status:         domain.StatusConfirmed,
		Currency:       req.Currency,
		TotalAmount:    req.TotalAmount,
		Items:          req.Items,
		Address:        req.Address,
		PaymentMode:    req.PaymentMode,
		ReceiptID:      req.ReceiptID,
		IdempotencyKey: req.IdempotencyKey,
		PlacedAt:       placedAt,
	})
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// ListOrders returns the user's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// AdvanceStatus applies one admin-side transition along the legal flow.
func (s *Service) AdvanceStatus(ctx context.Context, id, next string) (domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	if !domain.CanTransition(order.Status, next) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, next, ErrInvalidTransition)
	}

	return s.repo.SetStatus(ctx, id, next)
}

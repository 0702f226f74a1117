package domain

import "time"

const (
	StatusConfirmed = "CONFIRMED"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
)

// transitions is the only legal status flow. An order never moves backwards
// and never changes after delivery.
var transitions = map[string]string{
	StatusConfirmed: StatusShipped,
	StatusShipped:   StatusDelivered,
}

func CanTransition(from, to string) bool {
	return transitions[from] == to
}

type Address struct {
	Name    string
	Line1   string
	Line2   string
	City    string
	State   string
	Pincode string
	Phone   string
}

type OrderItem struct {
	ProductID       string
	Name            string
	Image           string
	UnitAmount      int64
	Quantity        int32
	LineTotalAmount int64
}

type Order struct {
	ID             string
	UserID         string
	Status         string
	Currency       string
	TotalAmount    int64
	Items          []OrderItem
	Address        Address
	PaymentMode    string
	ReceiptID      string
	IdempotencyKey string
	PlacedAt       time.Time
	UpdatedAt      time.Time
}

type PlaceOrderRequest struct {
	UserID         string
	Currency       string
	TotalAmount    int64
	Items          []OrderItem
	Address        Address
	PaymentMode    string
	ReceiptID      string
	IdempotencyKey string
	PlacedAt       time.Time
}

package domain

import "time"

type Money struct {
	Currency string
	Amount   int64
}

type ShippingAddress struct {
	Name    string
	Line1   string
	Line2   string
	City    string
	State   string
	Pincode string
	Phone   string
}

// Status is the user-visible stage of a checkout attempt.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusProcessing    Status = "processing"
	StatusPlaced        Status = "placed"
	StatusPaymentFailed Status = "payment_failed"
	StatusOrderFailed   Status = "order_failed"
)

type ChargeRequest struct {
	UserID      string
	Amount      Money
	PaymentMode string
}

type Receipt struct {
	ID           string
	Amount       Money
	AuthorizedAt time.Time
}

// OrderLine is a priced line of the order draft, assembled from the cart
// snapshot and the catalog price at checkout time.
type OrderLine struct {
	ProductID string
	Name      string
	Image     string
	Quantity  int32
	UnitPrice Money
	LineTotal Money
}

// OrderDraft is the immutable order value submitted to the persistence
// collaborator. It holds copies, not live cart references.
type OrderDraft struct {
	Lines           []OrderLine
	Total           Money
	PlacedAt        time.Time
	Status          string
	ShippingAddress ShippingAddress
	PaymentMode     string
	ReceiptID       string
}

// PlacedOrder is what the collaborator acknowledged storing.
type PlacedOrder struct {
	ID       string
	Status   string
	Total    Money
	PlacedAt time.Time
}

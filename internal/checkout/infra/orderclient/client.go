package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// Client talks to the order-persistence service over JSON/HTTP. No automatic
// retries: a failed placement is reported and the caller decides.
type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: httpClient,
	}
}

type orderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type shippingAddress struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone,omitempty"`
}

type placeRequest struct {
	Items           []orderItem     `json:"items"`
	Total           int64           `json:"total"`
	Currency        string          `json:"currency"`
	Date            string          `json:"date"`
	Status          string          `json:"status"`
	ShippingAddress shippingAddress `json:"shippingAddress"`
	PaymentMode     string          `json:"paymentMode"`
	ReceiptID       string          `json:"receiptId,omitempty"`
}

type placeResponse struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"`
	Total    int64     `json:"total"`
	Currency string    `json:"currency"`
	Date     time.Time `json:"date"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the order service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order service: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

func (c *Client) Place(ctx context.Context, draft domain.OrderDraft, credential, idempotencyKey string) (domain.PlacedOrder, error) {
	items := make([]orderItem, 0, len(draft.Lines))
	for _, ln := range draft.Lines {
		items = append(items, orderItem{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Image:     ln.Image,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice.Amount,
			LineTotal: ln.LineTotal.Amount,
		})
	}

	body := placeRequest{
		Items:    items,
		Total:    draft.Total.Amount,
		Currency: draft.Total.Currency,
		Date:     draft.PlacedAt.Format(time.RFC3339),
		Status:   draft.Status,
		ShippingAddress: shippingAddress{
			Name:    draft.ShippingAddress.Name,
			Line1:   draft.ShippingAddress.Line1,
			Line2:   draft.ShippingAddress.Line2,
			City:    draft.ShippingAddress.City,
			State:   draft.ShippingAddress.State,
			Pincode: draft.ShippingAddress.Pincode,
			Phone:   draft.ShippingAddress.Phone,
		},
		PaymentMode: draft.PaymentMode,
		ReceiptID:   draft.ReceiptID,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/user/orders", bytes.NewReader(raw))
	if err != nil {
		return domain.PlacedOrder{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "INTERNAL", Message: "order not placed"}
		var env errorEnvelope
		if b, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); readErr == nil {
			if json.Unmarshal(b, &env) == nil && env.Error.Message != "" {
				apiErr.Code = env.Error.Code
				apiErr.Message = env.Error.Message
			}
		}
		return domain.PlacedOrder{}, apiErr
	}

	var out placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.PlacedOrder{}, fmt.Errorf("decode order response: %w", err)
	}

	return domain.PlacedOrder{
		ID:       out.ID,
		Status:   out.Status,
		Total:    domain.Money{Currency: out.Currency, Amount: out.Total},
		PlacedAt: out.Date,
	}, nil
}

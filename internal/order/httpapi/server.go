package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TokenResolver turns an opaque bearer token into a user id. The storefront
// never mints tokens itself; whoever issued them plugs in here.
type TokenResolver interface {
	Resolve(token string) (string, error)
}

var ErrUnknownToken = errors.New("unknown token")

// StaticTokens resolves from a fixed token -> user table.
type StaticTokens map[string]string

func (t StaticTokens) Resolve(token string) (string, error) {
	userID, ok := t[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}

type Server struct {
	svc    *app.Service
	tokens TokenResolver
	log    *slog.Logger
}

func NewServer(svc *app.Service, tokens TokenResolver, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, tokens: tokens, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/user/orders", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/", s.placeOrder)
		r.Get("/", s.listOrders)
		r.Get("/{orderID}", s.getOrder)
	})

	r.Patch("/api/admin/orders/{orderID}/status", s.advanceStatus)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}

type ctxKey int

const userKey ctxKey = 0

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
			return
		}

		userID, err := s.tokens.Resolve(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func userFrom(r *http.Request) string {
	u, _ := r.Context().Value(userKey).(string)
	return u
}

type orderItemBody struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type addressBody struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone,omitempty"`
}

type placeOrderBody struct {
	Items           []orderItemBody `json:"items"`
	Total           int64           `json:"total"`
	Currency        string          `json:"currency"`
	Date            string          `json:"date"`
	Status          string          `json:"status"`
	ShippingAddress addressBody     `json:"shippingAddress"`
	PaymentMode     string          `json:"paymentMode"`
	ReceiptID       string          `json:"receiptId"`
}

type orderBody struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Total       int64           `json:"total"`
	Currency    string          `json:"currency"`
	Date        time.Time       `json:"date"`
	PaymentMode string          `json:"paymentMode,omitempty"`
	Items       []orderItemBody `json:"items,omitempty"`
	Address     *addressBody    `json:"shippingAddress,omitempty"`
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var body placeOrderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	items := make([]domain.OrderItem, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, domain.OrderItem{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Image:           it.Image,
			UnitAmount:      it.UnitPrice,
			Quantity:        it.Quantity,
			LineTotalAmount: it.LineTotal,
		})
	}

	var placedAt time.Time
	if body.Date != "" {
		if t, err := time.Parse(time.RFC3339, body.Date); err == nil {
			placedAt = t
		}
	}

	order, err := s.svc.PlaceOrder(r.Context(), domain.PlaceOrderRequest{
		UserID:      userFrom(r),
		Currency:    body.Currency,
		TotalAmount: body.Total,
		Items:       items,
		Address: domain.Address{
			Name:    body.ShippingAddress.Name,
			Line1:   body.ShippingAddress.Line1,
			Line2:   body.ShippingAddress.Line2,
			City:    body.ShippingAddress.City,
			State:   body.ShippingAddress.State,
			Pincode: body.ShippingAddress.Pincode,
			Phone:   body.ShippingAddress.Phone,
		},
		PaymentMode:    body.PaymentMode,
		ReceiptID:      body.ReceiptID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		PlacedAt:       placedAt,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBody(order, false))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.svc.ListOrders(r.Context(), userFrom(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]orderBody, 0, len(orders))
	for _, o := range orders {
		out = append(out, toBody(o, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.svc.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if order.UserID != userFrom(r) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}

	writeJSON(w, http.StatusOK, toBody(order, true))
}

func (s *Server) advanceStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	order, err := s.svc.AdvanceStatus(r.Context(), chi.URLParam(r, "orderID"), body.Status)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBody(order, false))
}

func toBody(o domain.Order, full bool) orderBody {
	out := orderBody{
		ID:       o.ID,
		Status:   o.Status,
		Total:    o.TotalAmount,
		Currency: o.Currency,
		Date:     o.PlacedAt,
	}
	if !full {
		return out
	}

	out.PaymentMode = o.PaymentMode
	out.Items = make([]orderItemBody, 0, len(o.Items))
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemBody{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitAmount,
			LineTotal: it.LineTotalAmount,
		})
	}
	out.Address = &addressBody{
		Name:    o.Address.Name,
		Line1:   o.Address.Line1,
		Line2:   o.Address.Line2,
		City:    o.Address.City,
		State:   o.Address.State,
		Pincode: o.Address.Pincode,
		Phone:   o.Address.Phone,
	}
	return out
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status, code := httpStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("order api error", slog.Any("err", err))
	}
	writeError(w, status, code, err.Error())
}

func httpStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, app.ErrInvalidTransition):
		return http.StatusConflict, "FAILED_PRECONDITION"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/serviceability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the shopper-facing REST surface: cart mutation, catalog reads,
// serviceability lookups and checkout submission.
type Server struct {
	cart     *cartapp.Store
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
	shipping *serviceability.Checker
	log      *slog.Logger
}

func NewServer(cart *cartapp.Store, catalog *catalogapp.Service, checkout *checkoutapp.Service, shipping *serviceability.Checker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cart: cart, catalog: catalog, checkout: checkout, shipping: shipping, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", s.getCart)
		r.Delete("/", s.clearCart)
		r.Post("/items", s.addItem)
		r.Put("/items/{productID}", s.setQuantity)
		r.Delete("/items/{productID}", s.removeItem)
		r.Post("/toggle", s.toggleCart)
	})

	r.Get("/api/products", s.listProducts)
	r.Get("/api/products/{productID}", s.getProduct)
	r.Get("/api/serviceability/{pincode}", s.checkPincode)
	r.Post("/api/checkout", s.placeOrder)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}

type cartItemBody struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Currency  string `json:"currency"`
	Quantity  int32  `json:"quantity"`
}

type cartBody struct {
	Items      []cartItemBody `json:"items"`
	TotalItems int32          `json:"totalItems"`
	TotalPrice int64          `json:"totalPrice"`
	Currency   string         `json:"currency"`
	Open       bool           `json:"open"`
}

func (s *Server) cartBody() cartBody {
	items := s.cart.Snapshot()
	total := s.cart.TotalPrice()

	out := cartBody{
		Items:      make([]cartItemBody, 0, len(items)),
		TotalItems: s.cart.TotalItems(),
		TotalPrice: total.Amount,
		Currency:   total.Currency,
		Open:       s.cart.IsOpen(),
	}
	for _, it := range items {
		out.Items = append(out.Items, cartItemBody{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Image:     it.Product.Image,
			UnitPrice: it.Product.Price.Amount,
			Currency:  it.Product.Price.Currency,
			Quantity:  it.Quantity,
		})
	}
	return out
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cartBody())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "productId is required")
		return
	}

	p, err := s.catalog.GetProduct(r.Context(), body.ProductID)
	if err != nil {
		if errors.Is(err, catalogapp.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "catalog lookup failed")
		return
	}

	s.cart.AddItem(r.Context(), toCartProduct(p))
	writeJSON(w, http.StatusOK, s.cartBody())
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	s.cart.SetQuantity(r.Context(), chi.URLParam(r, "productID"), body.Quantity)
	writeJSON(w, http.StatusOK, s.cartBody())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.cart.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	writeJSON(w, http.StatusOK, s.cartBody())
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, s.cartBody())
}

func (s *Server) toggleCart(w http.ResponseWriter, _ *http.Request) {
	s.cart.Toggle()
	writeJSON(w, http.StatusOK, s.cartBody())
}

type productBody struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Currency    string            `json:"currency"`
	Amount      int64             `json:"amount"`
	Image       string            `json:"image,omitempty"`
	Category    string            `json:"category,omitempty"`
	Subcategory string            `json:"subcategory,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := s.catalog.ListProducts(r.Context(), catalogdomain.ListFilter{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "catalog listing failed")
		return
	}

	out := make([]productBody, 0, len(products))
	for _, p := range products {
		out = append(out, toProductBody(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		if errors.Is(err, catalogapp.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "catalog lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, toProductBody(p))
}

func (s *Server) checkPincode(w http.ResponseWriter, r *http.Request) {
	pin := chi.URLParam(r, "pincode")
	est, err := s.shipping.Check(pin)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"pincode": pin, "serviceable": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pincode":      est.Pincode,
		"serviceable":  true,
		"deliveryDays": est.DeliveryDays,
	})
}

type checkoutRequestBody struct {
	ShippingAddress struct {
		Name    string `json:"name"`
		Line1   string `json:"line1"`
		Line2   string `json:"line2"`
		City    string `json:"city"`
		State   string `json:"state"`
		Pincode string `json:"pincode"`
		Phone   string `json:"phone"`
	} `json:"shippingAddress"`
	PaymentMode string `json:"paymentMode"`
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var body checkoutRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
		return
	}

	res, err := s.checkout.PlaceOrder(r.Context(), checkoutapp.PlaceOrderRequest{
		ShippingAddress: toCheckoutAddress(body),
		PaymentMode:     body.PaymentMode,
	})
	if err != nil {
		status, code := checkoutStatusFromErr(err)
		writeJSON(w, status, map[string]any{
			"status":   res.Status,
			"redirect": res.Redirect,
			"error":    map[string]string{"code": code, "message": err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":   res.Status,
		"redirect": res.Redirect,
		"order": map[string]any{
			"id":       res.Order.ID,
			"status":   res.Order.Status,
			"total":    res.Order.Total.Amount,
			"currency": res.Order.Total.Currency,
			"date":     res.Order.PlacedAt.Format(time.RFC3339),
		},
	})
}

func checkoutStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, checkoutapp.ErrNotAuthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, checkoutapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, serviceability.ErrNotServiceable):
		return http.StatusBadRequest, "NOT_SERVICEABLE"
	case errors.Is(err, checkoutapp.ErrCheckoutInFlight):
		return http.StatusConflict, "IN_FLIGHT"
	case errors.Is(err, checkoutapp.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "PAYMENT_DECLINED"
	case errors.Is(err, checkoutapp.ErrOrderNotPersisted):
		return http.StatusBadGateway, "ORDER_NOT_PLACED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func toProductBody(p catalogdomain.Product) productBody {
	return productBody{
		ID:          p.ID,
		Name:        p.Name,
		Currency:    p.Price.Currency,
		Amount:      p.Price.Amount,
		Image:       p.Image,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Description: p.Description,
		Attributes:  p.Attributes,
	}
}

func toCartProduct(p catalogdomain.Product) cartdomain.Product {
	return cartdomain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       cartdomain.Money{Currency: p.Price.Currency, Amount: p.Price.Amount},
		Image:       p.Image,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Description: p.Description,
		Attributes:  p.Attributes,
	}
}

func toCheckoutAddress(body checkoutRequestBody) checkoutdomain.ShippingAddress {
	a := body.ShippingAddress
	return checkoutdomain.ShippingAddress{
		Name:    a.Name,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
		Phone:   a.Phone,
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

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	"github.com/dwikikusuma/storefront/internal/order/httpapi"
	"github.com/dwikikusuma/storefront/internal/order/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := orderapp.NewService(memory.NewRepo())
	api := httpapi.NewServer(svc, httpapi.StaticTokens{"tok-1": "u1", "tok-2": "u2"}, nil)

	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return srv
}

func orderPayload() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"productId": "p1", "name": "Silver Ring", "quantity": 2, "unitPrice": 250, "lineTotal": 500},
			{"productId": "p2", "name": "Cotton Shirt", "quantity": 1, "unitPrice": 500, "lineTotal": 500},
		},
		"total":    1000,
		"currency": "INR",
		"date":     "2025-06-01T10:30:00Z",
		"status":   "CONFIRMED",
		"shippingAddress": map[string]any{
			"name": "A Shopper", "line1": "12 MG Road", "city": "Bengaluru", "state": "KA", "pincode": "560001",
		},
		"paymentMode": "card",
	}
}

func do(t *testing.T, srv *httptest.Server, method, path, token, idemKey string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestPlaceOrderEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("no token -> 401", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/api/user/orders", "", "", orderPayload())
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", body["error"].(map[string]any)["code"])
	})

	t.Run("unknown token -> 401", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPost, "/api/user/orders", "nope", "", orderPayload())
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid order -> 201", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "key-1", orderPayload())
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		assert.NotEmpty(t, body["id"])
		assert.Equal(t, "CONFIRMED", body["status"])
		assert.Equal(t, float64(1000), body["total"])
	})

	t.Run("replayed idempotency key -> same order", func(t *testing.T) {
		first, b1 := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "key-replay", orderPayload())
		second, b2 := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "key-replay", orderPayload())

		require.Equal(t, http.StatusCreated, first.StatusCode)
		require.Equal(t, http.StatusCreated, second.StatusCode)
		assert.Equal(t, b1["id"], b2["id"])
	})

	t.Run("total mismatch -> 400", func(t *testing.T) {
		payload := orderPayload()
		payload["total"] = 999
		resp, body := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "", payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["code"])
	})

	t.Run("malformed body -> 400", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/user/orders", bytes.NewBufferString("{nope"))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer tok-1")
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOrderHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	_, first := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "k1", orderPayload())
	_, second := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "k2", orderPayload())

	resp, body := do(t, srv, http.MethodGet, "/api/user/orders", "tok-1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	orders := body["orders"].([]any)
	require.Len(t, orders, 2)
	assert.Equal(t, second["id"], orders[0].(map[string]any)["id"], "newest first")
	assert.Equal(t, first["id"], orders[1].(map[string]any)["id"])

	t.Run("history is per user", func(t *testing.T) {
		resp, body := do(t, srv, http.MethodGet, "/api/user/orders", "tok-2", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, body["orders"])
	})

	t.Run("foreign order id -> 404", func(t *testing.T) {
		orderID := first["id"].(string)
		resp, _ := do(t, srv, http.MethodGet, "/api/user/orders/"+orderID, "tok-2", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("own order id -> full order", func(t *testing.T) {
		orderID := first["id"].(string)
		resp, body := do(t, srv, http.MethodGet, "/api/user/orders/"+orderID, "tok-1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["items"].([]any), 2)
		assert.Equal(t, "560001", body["shippingAddress"].(map[string]any)["pincode"])
	})
}

func TestAdvanceStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, placed := do(t, srv, http.MethodPost, "/api/user/orders", "tok-1", "k1", orderPayload())
	orderID := placed["id"].(string)

	resp, body := do(t, srv, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", "", "", map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SHIPPED", body["status"])

	t.Run("illegal transition -> 409", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodPatch, "/api/admin/orders/"+orderID+"/status", "", "", map[string]string{"status": "CONFIRMED"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

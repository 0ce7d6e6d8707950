package orders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/orders"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

type stubSession struct {
	id int
	ok bool
}

func (s stubSession) EmployeeID() (int, bool) { return s.id, s.ok }

func newOrdersClient(t *testing.T, handler http.Handler, session orders.Session) (*orders.Client, *core.QueryCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retry.InitialDelay = time.Millisecond

	cache := core.NewQueryCache(logger.NopLogger{})
	tr := core.NewTransport(cfg, logger.NopLogger{})
	return orders.NewClient(tr, cache, session, logger.NopLogger{}), cache
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func TestPlaceOrderWithinAllowance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathPlaceOrder, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 42, req["employee_id"])
		assert.EqualValues(t, 9, req["cart_id"])
		writeEnvelope(w, map[string]interface{}{"requires_payment": false, "order_id": 501})
	})

	c, cache := newOrdersClient(t, mux, stubSession{id: 42, ok: true})

	// Seed caches that must go stale once the order lands
	cartKey := core.Key(core.PathCartGet, 42, "2024-06-10")
	gen := cache.Begin(cartKey)
	require.True(t, cache.Commit(cartKey, gen, "cart", core.TagCart))
	allowKey := core.Key("/employee/allowance", 42, "2024-06-10")
	gen = cache.Begin(allowKey)
	require.True(t, cache.Commit(allowKey, gen, "allowance", core.TagAllowance))

	placement, err := c.PlaceOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, placement.RequiresPayment)
	assert.Equal(t, 501, placement.OrderID)
	assert.Nil(t, placement.Payment)

	// The server cleared the cart during place-order, so both caches must
	// refetch even though no payment flow ran
	_, hit := cache.Get(cartKey)
	assert.False(t, hit)
	_, hit = cache.Get(allowKey)
	assert.False(t, hit)
}

func TestPlaceOrderRequiresPayment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathPlaceOrder, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{
			"requires_payment": true,
			"order_id":         502,
			"payment_url":      "https://gateway.example/pay/abc",
			"amount":           "14.00",
		})
	})

	c, _ := newOrdersClient(t, mux, stubSession{id: 42, ok: true})

	placement, err := c.PlaceOrder(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, placement.RequiresPayment)
	require.NotNil(t, placement.Payment)
	assert.Equal(t, "https://gateway.example/pay/abc", placement.Payment.URL)
	assert.Equal(t, 502, placement.Payment.OrderID)
	assert.Equal(t, 14.0, placement.Payment.Amount.Float())
}

func TestPlaceOrderUnauthenticated(t *testing.T) {
	var called int32
	c, _ := newOrdersClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
	}), stubSession{})

	_, err := c.PlaceOrder(context.Background(), 9)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.Zero(t, atomic.LoadInt32(&called))
}

func TestBeginPaymentRejectsEmptyHandoff(t *testing.T) {
	c, _ := newOrdersClient(t, http.NewServeMux(), stubSession{id: 42, ok: true})

	_, err := c.BeginPayment(nil)
	assert.Error(t, err)
	_, err = c.BeginPayment(&orders.Payment{OrderID: 1})
	assert.Error(t, err)
}

func paymentSession(t *testing.T) (*orders.PaymentSession, *core.QueryCache) {
	t.Helper()
	c, cache := newOrdersClient(t, http.NewServeMux(), stubSession{id: 42, ok: true})
	s, err := c.BeginPayment(&orders.Payment{
		URL:     "https://gateway.example/pay/abc",
		OrderID: 502,
		Amount:  "14.00",
	})
	require.NoError(t, err)
	return s, cache
}

func TestPaymentObserveSuccess(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "path marker", url: "https://gateway.example/payment/success?ref=abc"},
		{name: "query marker", url: "https://gateway.example/return?status=success&ref=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, cache := paymentSession(t)

			key := core.Key(core.PathCartGet, 42, "2024-06-10")
			gen := cache.Begin(key)
			require.True(t, cache.Commit(key, gen, "cart", core.TagCart))

			// Intermediate gateway pages decide nothing
			assert.Equal(t, orders.OutcomePending, s.Observe("https://gateway.example/pay/abc/3ds"))
			assert.False(t, s.Done())

			assert.Equal(t, orders.OutcomeSuccess, s.Observe(tt.url))
			assert.True(t, s.Done())
			assert.NoError(t, s.Err())

			_, hit := cache.Get(key)
			assert.False(t, hit, "success must invalidate the cart cache")
		})
	}
}

func TestPaymentObserveFailure(t *testing.T) {
	for _, url := range []string{
		"https://gateway.example/payment/failure?ref=abc",
		"https://gateway.example/payment/cancel",
		"https://gateway.example/return?status=failed",
	} {
		s, _ := paymentSession(t)
		assert.Equal(t, orders.OutcomeFailure, s.Observe(url))
		assert.ErrorIs(t, s.Err(), core.ErrPaymentFailed)
	}
}

func TestPaymentSettlesOnce(t *testing.T) {
	s, _ := paymentSession(t)

	require.Equal(t, orders.OutcomeSuccess, s.Observe("https://gateway.example/payment/success"))
	// A late failure navigation cannot flip a settled session
	assert.Equal(t, orders.OutcomeSuccess, s.Observe("https://gateway.example/payment/failure"))
	assert.NoError(t, s.Err())
}

func TestPaymentCancelConfirmationContract(t *testing.T) {
	s, _ := paymentSession(t)

	// Confirming without a request is a no-op
	assert.False(t, s.ConfirmCancel())
	assert.Equal(t, orders.OutcomePending, s.Outcome())

	// Request then dismiss keeps the payment alive
	assert.True(t, s.RequestCancel())
	s.DismissCancel()
	assert.False(t, s.ConfirmCancel())
	assert.Equal(t, orders.OutcomePending, s.Outcome())

	// Request then confirm abandons it
	assert.True(t, s.RequestCancel())
	assert.True(t, s.ConfirmCancel())
	assert.Equal(t, orders.OutcomeCancelled, s.Outcome())
	assert.ErrorIs(t, s.Err(), core.ErrPaymentCancelled)

	// Nothing moves a settled session
	assert.False(t, s.RequestCancel())
	assert.Equal(t, orders.OutcomeCancelled, s.Observe("https://gateway.example/payment/success"))
}

func TestOrderHistory(t *testing.T) {
	var listCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathOrders, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		writeEnvelope(w, map[string]interface{}{"orders": []map[string]interface{}{
			{
				"order_id":             501,
				"unique_id":            "GCBK-501",
				"preorder_date":        "2024-06-10",
				"total":                "36.00",
				"tracking_status_text": "Preparing",
				"payment_status_text":  "Paid",
			},
		}})
	})
	mux.HandleFunc(core.DefaultAPIPrefix+"/employee/orders/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeEnvelope(w, map[string]interface{}{"order": map[string]interface{}{
			"order_id":  501,
			"unique_id": "GCBK-501",
			"items": []map[string]interface{}{
				{"product_id": 7, "quantity": 3, "price": "12.00", "name_en": "Club Sandwich"},
			},
		}})
	})

	c, _ := newOrdersClient(t, mux, stubSession{id: 42, ok: true})
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "GCBK-501", list[0].UniqueID)
	assert.Equal(t, "Preparing", list[0].TrackingStatusText)

	placed, err := list[0].Date()
	require.NoError(t, err)
	assert.Equal(t, time.June, placed.Month())

	// Second call is served from cache
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))

	detail, err := c.Detail(ctx, 501)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Club Sandwich", detail.Items[0].NameEN)
	assert.Equal(t, 3, detail.Items[0].Quantity)
}

func TestOrderHistoryReturnsDetachedCopies(t *testing.T) {
	var listCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathOrders, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		writeEnvelope(w, map[string]interface{}{"orders": []map[string]interface{}{
			{"order_id": 501, "unique_id": "GCBK-501", "tracking_status_text": "Preparing"},
		}})
	})
	mux.HandleFunc(core.DefaultAPIPrefix+"/employee/orders/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"order": map[string]interface{}{
			"order_id": 501,
			"items": []map[string]interface{}{
				{"product_id": 7, "quantity": 3, "price": "12.00"},
			},
		}})
	})

	c, _ := newOrdersClient(t, mux, stubSession{id: 42, ok: true})
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	list[0].TrackingStatusText = "scribbled over"

	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Preparing", list[0].TrackingStatusText)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls), "mutation must not force a refetch to stay correct")

	detail, err := c.Detail(ctx, 501)
	require.NoError(t, err)
	detail.Items[0].Quantity = 99

	detail, err = c.Detail(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.Items[0].Quantity)
}

func TestOrderHistoryUnauthenticated(t *testing.T) {
	c, _ := newOrdersClient(t, http.NewServeMux(), stubSession{})

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	_, err = c.Detail(context.Background(), 501)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

package catalog_test

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

	"github.com/sujitha-np/grandkitchen-go/catalog"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

type stubSession struct {
	id int
	ok bool
}

func (s stubSession) EmployeeID() (int, bool) { return s.id, s.ok }

func newCatalogClient(t *testing.T, handler http.Handler, session catalog.Session) (*catalog.Client, *core.QueryCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Retry.InitialDelay = time.Millisecond

	cache := core.NewQueryCache(logger.NopLogger{})
	tr := core.NewTransport(cfg, logger.NopLogger{})
	return catalog.NewClient(tr, cache, session, logger.NopLogger{}), cache
}

func writeEnvelope(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func TestProductsFilter(t *testing.T) {
	var gotDept float64
	var gotSearch string
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathProducts, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotDept, _ = req["department_id"].(float64)
		gotSearch, _ = req["search"].(string)
		writeEnvelope(w, map[string]interface{}{"products": []map[string]interface{}{
			{"id": 7, "name_en": "Club Sandwich", "price": "12.00", "department_id": 3, "stock": 5},
		}})
	})

	c, _ := newCatalogClient(t, mux, stubSession{id: 42, ok: true})
	ctx := context.Background()

	products, err := c.Products(ctx, catalog.ProductFilter{DepartmentID: 3, Search: "club"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Club Sandwich", products[0].NameEN)
	assert.EqualValues(t, 3, gotDept)
	assert.Equal(t, "club", gotSearch)
}

func TestProductsCachedPerFilter(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathProducts, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, map[string]interface{}{"products": []map[string]interface{}{}})
	})

	c, _ := newCatalogClient(t, mux, stubSession{id: 42, ok: true})
	ctx := context.Background()

	_, err := c.Products(ctx, catalog.ProductFilter{DepartmentID: 3})
	require.NoError(t, err)
	_, err = c.Products(ctx, catalog.ProductFilter{DepartmentID: 3})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "same filter is served from cache")

	// A different filter is a different cache key
	_, err = c.Products(ctx, catalog.ProductFilter{DepartmentID: 4})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEffectivePrice(t *testing.T) {
	p := catalog.Product{Price: "12.00", OfferPrice: "9.50"}
	assert.Equal(t, core.Amount("9.50"), p.EffectivePrice())

	p.OfferPrice = ""
	assert.Equal(t, core.Amount("12.00"), p.EffectivePrice())

	p.OfferPrice = "0"
	assert.Equal(t, core.Amount("12.00"), p.EffectivePrice())
}

func TestDepartmentsArePublic(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathDepartments, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeEnvelope(w, map[string]interface{}{"departments": []map[string]interface{}{
			{"id": 3, "name_en": "Bakery"},
		}})
	})

	// No session: departments still load
	c, _ := newCatalogClient(t, mux, stubSession{})
	departments, err := c.Departments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "Bakery", departments[0].NameEN)
}

func TestWishlistToggleInvalidatesProducts(t *testing.T) {
	var productCalls int32
	wishlisted := false
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathProducts, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&productCalls, 1)
		writeEnvelope(w, map[string]interface{}{"products": []map[string]interface{}{
			{"id": 7, "name_en": "Club Sandwich", "is_wishlisted": wishlisted},
		}})
	})
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathWishlistTog, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 7, req["product_id"])
		wishlisted = !wishlisted
		writeEnvelope(w, map[string]interface{}{"is_wishlisted": wishlisted})
	})

	c, _ := newCatalogClient(t, mux, stubSession{id: 42, ok: true})
	ctx := context.Background()

	products, err := c.Products(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	require.False(t, products[0].Wishlisted)

	nowWishlisted, err := c.ToggleWishlist(ctx, 7)
	require.NoError(t, err)
	assert.True(t, nowWishlisted)

	// The listing refetches because its wishlist flags are stale
	products, err = c.Products(ctx, catalog.ProductFilter{})
	require.NoError(t, err)
	assert.True(t, products[0].Wishlisted)
	assert.Equal(t, int32(2), atomic.LoadInt32(&productCalls))
}

func TestWishlist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathWishlist, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"products": []map[string]interface{}{
			{"id": 7, "name_en": "Club Sandwich", "is_wishlisted": true},
		}})
	})

	c, _ := newCatalogClient(t, mux, stubSession{id: 42, ok: true})
	list, err := c.Wishlist(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Wishlisted)
}

func TestCatalogUnauthenticated(t *testing.T) {
	var called int32
	c, _ := newCatalogClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
	}), stubSession{})
	ctx := context.Background()

	_, err := c.Products(ctx, catalog.ProductFilter{})
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	_, err = c.Offers(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	_, err = c.Wishlist(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	_, err = c.ToggleWishlist(ctx, 7)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.Zero(t, atomic.LoadInt32(&called))
}

package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujitha-np/grandkitchen-go/cart"
	"github.com/sujitha-np/grandkitchen-go/catalog"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/employee"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

type stubProfile struct {
	profile *employee.Profile
	err     error
}

func (s stubProfile) Profile(context.Context) (*employee.Profile, error) {
	return s.profile, s.err
}

type stubAllowance struct {
	allowance *cart.Allowance
	err       error
}

func (s stubAllowance) Allowance(context.Context, time.Time) (*cart.Allowance, error) {
	return s.allowance, s.err
}

func homeHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathDepartments, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"departments": []map[string]interface{}{
			{"id": 3, "name_en": "Bakery"},
		}})
	})
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathProducts, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"products": []map[string]interface{}{
			{"id": 7, "name_en": "Club Sandwich", "price": "12.00"},
		}})
	})
	mux.HandleFunc(core.DefaultAPIPrefix+core.PathOffers, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]interface{}{"offers": []map[string]interface{}{
			{"id": 1, "product_id": 7, "title_en": "Lunch deal"},
		}})
	})
	return mux
}

func TestHomeSnapshotAllSections(t *testing.T) {
	c, _ := newCatalogClient(t, homeHandler(), stubSession{id: 42, ok: true})
	h := catalog.NewHome(c,
		stubProfile{profile: &employee.Profile{EmployeeID: 42, Name: "Amal"}},
		stubAllowance{allowance: &cart.Allowance{DailyMealAllowance: "50.00", RemainingAllowance: "50.00"}},
		logger.NopLogger{})

	snap, err := h.Snapshot(context.Background(), time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local))
	require.NoError(t, err)

	assert.True(t, snap.Complete())
	assert.Equal(t, "Amal", snap.Profile.Name)
	require.Len(t, snap.Departments, 1)
	require.Len(t, snap.Products, 1)
	require.Len(t, snap.Offers, 1)
	assert.Equal(t, 50.0, snap.Allowance.DailyMealAllowance.Float())
}

func TestHomeSnapshotPartialFailure(t *testing.T) {
	c, _ := newCatalogClient(t, homeHandler(), stubSession{id: 42, ok: true})
	h := catalog.NewHome(c,
		stubProfile{err: errors.New("profile service down")},
		stubAllowance{allowance: &cart.Allowance{DailyMealAllowance: "50.00"}},
		logger.NopLogger{})

	snap, err := h.Snapshot(context.Background(), time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local))
	require.NoError(t, err, "one failed section must not fail the refresh")

	assert.False(t, snap.Complete())
	assert.Nil(t, snap.Profile)
	assert.Contains(t, snap.Errors, "profile")
	assert.Len(t, snap.Errors, 1)

	// The healthy sections still populated
	assert.NotEmpty(t, snap.Products)
	assert.NotNil(t, snap.Allowance)
}

func TestHomeSnapshotUnauthenticated(t *testing.T) {
	c, _ := newCatalogClient(t, homeHandler(), stubSession{})
	h := catalog.NewHome(c, stubProfile{}, stubAllowance{}, logger.NopLogger{})

	_, err := h.Snapshot(context.Background(), time.Now())
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

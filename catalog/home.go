package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/sujitha-np/grandkitchen-go/cart"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/employee"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// ProfileSource supplies the profile section of the home refresh
type ProfileSource interface {
	Profile(ctx context.Context) (*employee.Profile, error)
}

// AllowanceSource supplies the allowance section of the home refresh
type AllowanceSource interface {
	Allowance(ctx context.Context, date time.Time) (*cart.Allowance, error)
}

// HomeSnapshot is the result of one home-screen refresh. Sections that
// failed are nil/empty with their error recorded in Errors by section name;
// the snapshot as a whole only fails when the session is missing.
type HomeSnapshot struct {
	Profile     *employee.Profile
	Departments []Department
	Products    []Product
	Offers      []Offer
	Allowance   *cart.Allowance

	Errors map[string]error
}

// Complete reports whether every section loaded
func (h *HomeSnapshot) Complete() bool {
	return len(h.Errors) == 0
}

// Home refreshes the home screen: five independent fetches issued in
// parallel and merged into one snapshot
type Home struct {
	catalog   *Client
	profile   ProfileSource
	allowance AllowanceSource
	logger    logger.Logger
}

// NewHome wires the home refresh over the catalog, profile and allowance
// clients
func NewHome(catalog *Client, profile ProfileSource, allowance AllowanceSource, log logger.Logger) *Home {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Home{
		catalog:   catalog,
		profile:   profile,
		allowance: allowance,
		logger:    log.With(map[string]interface{}{"component": "home"}),
	}
}

// Snapshot fetches profile, departments, products, offers and the
// allowance for date concurrently. Initial mount and pull-to-refresh both
// call this; there is no separate refresh path.
func (h *Home) Snapshot(ctx context.Context, date time.Time) (*HomeSnapshot, error) {
	if _, ok := h.catalog.session.EmployeeID(); !ok {
		return nil, core.ErrUnauthenticated
	}

	snap := &HomeSnapshot{Errors: make(map[string]error)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	section := func(name string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil {
				mu.Lock()
				snap.Errors[name] = err
				mu.Unlock()
				h.logger.Warn("Home section failed", map[string]interface{}{
					"section": name,
					"error":   core.UserMessage(err),
				})
			}
		}()
	}

	section("profile", func() error {
		p, err := h.profile.Profile(ctx)
		snap.Profile = p
		return err
	})
	section("departments", func() error {
		d, err := h.catalog.Departments(ctx)
		snap.Departments = d
		return err
	})
	section("products", func() error {
		p, err := h.catalog.Products(ctx, ProductFilter{})
		snap.Products = p
		return err
	})
	section("offers", func() error {
		o, err := h.catalog.Offers(ctx)
		snap.Offers = o
		return err
	})
	section("allowance", func() error {
		a, err := h.allowance.Allowance(ctx, date)
		snap.Allowance = a
		return err
	})

	wg.Wait()
	return snap, nil
}

// Package grandkitchen is the Go client SDK for the Grand Central Bakery
// and Kitchen employee meal-ordering service.
//
// The entry point is Client, which wires configuration, logging, the
// session store, the HTTP transport and the query cache, and exposes the
// feature surfaces:
//
//	client, err := grandkitchen.New(
//		grandkitchen.WithBaseURL("https://api.gcbk.example"),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close(ctx)
//
//	client.Hydrate(ctx) // best-effort session restore
//	snap, err := client.Reconciler.Snapshot(ctx, date)
//
// Most applications import only this package; the subpackages are public
// for callers that want a narrower dependency.
package grandkitchen

import (
	"context"
	"fmt"
	"os"

	"github.com/sujitha-np/grandkitchen-go/auth"
	"github.com/sujitha-np/grandkitchen-go/cart"
	"github.com/sujitha-np/grandkitchen-go/catalog"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/employee"
	"github.com/sujitha-np/grandkitchen-go/orders"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
	"github.com/sujitha-np/grandkitchen-go/pkg/store"
	"github.com/sujitha-np/grandkitchen-go/pkg/telemetry"
)

// Client is the assembled SDK. Feature clients share one transport, one
// query cache and one session; a Client is safe for concurrent use.
type Client struct {
	// Auth drives the OTP login handshake and owns the session
	Auth *auth.Authenticator

	// Cart performs date-scoped cart and allowance operations
	Cart *cart.Client

	// Reconciler merges cart and allowance into per-date snapshots
	Reconciler *cart.Reconciler

	// Orders performs checkout, payment completion and history reads
	Orders *orders.Client

	// Catalog lists products, departments, offers and the wishlist
	Catalog *catalog.Client

	// Home refreshes the home screen sections in parallel
	Home *catalog.Home

	// Employee covers profile, notifications and device registration
	Employee *employee.Client

	config    *core.Config
	logger    logger.Logger
	store     store.Store
	transport *core.Transport
	cache     *core.QueryCache
	telemetry *telemetry.Provider
}

// New builds a Client from defaults, environment variables and the given
// options, in that priority order
func New(opts ...core.Option) (*Client, error) {
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	log := logger.NewTextLogger(os.Stderr, logger.ParseLevel(cfg.Logging.Level))

	c := &Client{config: cfg, logger: log}

	switch cfg.Store.Provider {
	case "redis":
		st, err := store.NewRedisStore(cfg.Store.RedisURL, cfg.Store.Namespace)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		c.store = st
	default:
		c.store = store.NewMemoryStore()
	}

	topts := []core.TransportOption{
		core.WithTokenFunc(func(ctx context.Context) string {
			if c.Auth == nil {
				return ""
			}
			return c.Auth.Token(ctx)
		}),
	}
	if cfg.Telemetry.Enabled {
		provider, err := telemetry.Initialize(cfg.Telemetry.ServiceName)
		if err != nil {
			log.Warn("Telemetry initialization failed, continuing without tracing", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.telemetry = provider
			topts = append(topts, core.WithRoundTripper(telemetry.WrapTransport(nil)))
		}
	}

	c.transport = core.NewTransport(cfg, log, topts...)
	c.cache = core.NewQueryCache(log)

	c.Auth = auth.NewAuthenticator(c.transport, c.store, log)
	c.Cart = cart.NewClient(c.transport, c.cache, c.Auth, log)
	c.Reconciler = cart.NewReconciler(c.Cart, log)
	c.Orders = orders.NewClient(c.transport, c.cache, c.Auth, log)
	c.Catalog = catalog.NewClient(c.transport, c.cache, c.Auth, log)
	c.Employee = employee.NewClient(c.transport, c.cache, c.Auth, log)
	c.Home = catalog.NewHome(c.Catalog, c.Employee, c.Cart, log)

	log.Info("Client initialized", map[string]interface{}{
		"base_url": cfg.BaseURL,
		"store":    cfg.Store.Provider,
	})
	return c, nil
}

// Hydrate restores a persisted session from the store, best effort. Call
// once at startup; a Client with nothing persisted simply stays logged out.
func (c *Client) Hydrate(ctx context.Context) {
	c.Auth.Hydrate(ctx)
}

// IsAuthenticated reports whether a verified session is active
func (c *Client) IsAuthenticated() bool {
	return c.Auth.IsAuthenticated()
}

// Logout ends the session, clears persisted credentials and drops every
// cached query
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Auth.Logout(ctx); err != nil {
		return err
	}
	c.cache.InvalidateAll()
	return nil
}

// InvalidateAll drops every cached query; the next reads refetch
func (c *Client) InvalidateAll() {
	c.cache.InvalidateAll()
}

// Config returns the resolved configuration
func (c *Client) Config() *core.Config {
	return c.config
}

// Close releases the session store and flushes telemetry, if enabled
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if closer, ok := c.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if c.telemetry != nil {
		if err := c.telemetry.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

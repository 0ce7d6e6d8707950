// Package cart implements the date-scoped cart: fetching, line-item
// mutations, the per-day allowance, and the reconciliation that keeps the
// two consistent for the selected preorder date.
//
// A cart is scoped to one (employee, preorder date) pair and the server
// guarantees at most one active cart per pair. The client never creates a
// cart directly; the first Add for a date creates it server-side.
//
// Every mutation invalidates the Cart, Allowance and Home cache tags before
// reporting success. Showing a stale allowance after a mutation is a
// correctness bug, not a cosmetic one: the progress bar and the checkout
// affordance are both derived from it.
package cart

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/dates"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Session supplies the logged-in employee. Date-scoped queries short-circuit
// before any network call when no session is active.
type Session interface {
	EmployeeID() (int, bool)
}

// Item is one cart line. Product display fields are denormalized onto the
// line at add time.
type Item struct {
	ID         int         `json:"id"`
	ProductID  int         `json:"product_id"`
	Quantity   int         `json:"quantity"`
	Price      core.Amount `json:"price"`
	NameEN     string      `json:"name_en"`
	NameAR     string      `json:"name_ar"`
	Department string      `json:"department"`
	Image      string      `json:"image"`
}

// Cart is the active cart for one (employee, preorder date) pair
type Cart struct {
	CartID             int         `json:"cart_id"`
	Subtotal           core.Amount `json:"subtotal"`
	DailyAllowance     core.Amount `json:"daily_allowance"`
	RemainingAllowance core.Amount `json:"remaining_allowance"`
	UsedAllowance      core.Amount `json:"used_allowance"`
	ExtraPayment       core.Amount `json:"extra_payment"`
	Items              []Item      `json:"items"`
}

// Allowance is the date-scoped allowance snapshot. The server computes it;
// the client treats it as read-only and refetches after every mutation.
type Allowance struct {
	DailyMealAllowance core.Amount `json:"daily_meal_allowance"`
	RemainingAllowance core.Amount `json:"remaining_allowance"`
	UsedAllowance      core.Amount `json:"used_allowance"`
}

// Client performs cart and allowance operations
type Client struct {
	transport *core.Transport
	cache     *core.QueryCache
	session   Session
	logger    logger.Logger
}

// NewClient creates a cart client
func NewClient(transport *core.Transport, cache *core.QueryCache, session Session, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		transport: transport,
		cache:     cache,
		session:   session,
		logger:    log.With(map[string]interface{}{"component": "cart"}),
	}
}

type getCartRequest struct {
	EmployeeID   int    `json:"employee_id"`
	PreorderDate string `json:"preorder_date"`
}

type getCartResponse struct {
	Cart *Cart `json:"cart"`
}

// clone detaches a cart from the cache so callers can mutate their copy
// freely
func (ca *Cart) clone() *Cart {
	if ca == nil {
		return nil
	}
	cp := *ca
	cp.Items = append([]Item(nil), ca.Items...)
	return &cp
}

// Get fetches the cart for the given preorder date. A nil cart with a nil
// error means no cart exists for that date yet. Get is read-only: calling it
// repeatedly never creates or duplicates a cart.
func (c *Client) Get(ctx context.Context, date time.Time) (*Cart, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	day := dates.Format(date)

	key := core.Key(core.PathCartGet, employeeID, day)
	if cached, hit := c.cache.Get(key); hit {
		return cached.(*Cart).clone(), nil
	}

	gen := c.cache.Begin(key)
	var resp getCartResponse
	if err := c.transport.PostJSONRead(ctx, core.PathCartGet, getCartRequest{
		EmployeeID:   employeeID,
		PreorderDate: day,
	}, &resp); err != nil {
		return nil, core.NewClientError("cart.Get", "cart", err)
	}

	if !c.cache.Commit(key, gen, resp.Cart, core.TagCart) {
		return nil, core.ErrSuperseded
	}
	return resp.Cart.clone(), nil
}

type addRequest struct {
	EmployeeID   int    `json:"employee_id"`
	ProductID    int    `json:"product_id"`
	Quantity     int    `json:"quantity"`
	PreorderDate string `json:"preorder_date"`
}

// Add puts a product into the cart for the given date, creating the cart
// server-side if none exists yet
func (c *Client) Add(ctx context.Context, productID, quantity int, date time.Time) error {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return core.ErrUnauthenticated
	}
	if quantity < 1 {
		return fmt.Errorf("cart.Add: %w", core.ErrQuantityBelowMinimum)
	}

	if err := c.transport.PostJSON(ctx, core.PathCartAdd, addRequest{
		EmployeeID:   employeeID,
		ProductID:    productID,
		Quantity:     quantity,
		PreorderDate: dates.Format(date),
	}, nil); err != nil {
		return core.NewClientError("cart.Add", "cart", err)
	}

	c.invalidateAfterMutation("add")
	return nil
}

type updateRequest struct {
	EmployeeID   int    `json:"employee_id"`
	CartItemID   int    `json:"cart_item_id"`
	Quantity     int    `json:"quantity"`
	PreorderDate string `json:"preorder_date"`
}

// UpdateQuantity sets a line item's quantity. Quantities below 1 are
// rejected before any network call; removal is a distinct explicit action.
func (c *Client) UpdateQuantity(ctx context.Context, cartItemID, quantity int, date time.Time) error {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return core.ErrUnauthenticated
	}
	if quantity < 1 {
		return fmt.Errorf("cart.UpdateQuantity: %w", core.ErrQuantityBelowMinimum)
	}

	if err := c.transport.PostJSON(ctx, core.PathCartUpdate, updateRequest{
		EmployeeID:   employeeID,
		CartItemID:   cartItemID,
		Quantity:     quantity,
		PreorderDate: dates.Format(date),
	}, nil); err != nil {
		return core.NewClientError("cart.UpdateQuantity", "cart", err)
	}

	c.invalidateAfterMutation("update")
	return nil
}

// AdjustQuantity applies a +1/-1 stepper delta to an item. A delta that
// would bring the quantity below 1 is a no-op rejection; the stepper's
// minus button maps here, the remove button maps to Remove.
func (c *Client) AdjustQuantity(ctx context.Context, item Item, delta int, date time.Time) error {
	next := item.Quantity + delta
	if next < 1 {
		return fmt.Errorf("cart.AdjustQuantity: %w", core.ErrQuantityBelowMinimum)
	}
	return c.UpdateQuantity(ctx, item.ID, next, date)
}

type removeRequest struct {
	EmployeeID int `json:"employee_id"`
	CartItemID int `json:"cart_item_id"`
}

// Remove deletes a line item from the cart
func (c *Client) Remove(ctx context.Context, cartItemID int, date time.Time) error {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return core.ErrUnauthenticated
	}

	if err := c.transport.PostJSON(ctx, core.PathCartRemove, removeRequest{
		EmployeeID: employeeID,
		CartItemID: cartItemID,
	}, nil); err != nil {
		return core.NewClientError("cart.Remove", "cart", err)
	}

	c.invalidateAfterMutation("remove")
	return nil
}

// Allowance fetches the allowance snapshot for the given date. The endpoint
// takes the employee id in the path and a form-encoded preorder_date.
func (c *Client) Allowance(ctx context.Context, date time.Time) (*Allowance, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	day := dates.Format(date)

	key := core.Key("/employee/allowance", employeeID, day)
	if cached, hit := c.cache.Get(key); hit {
		cp := *cached.(*Allowance)
		return &cp, nil
	}

	gen := c.cache.Begin(key)
	form := url.Values{}
	form.Set("preorder_date", day)

	var resp Allowance
	path := fmt.Sprintf(core.PathAllowance, employeeID)
	if err := c.transport.PostForm(ctx, path, form, &resp); err != nil {
		return nil, core.NewClientError("cart.Allowance", "allowance", err)
	}

	if !c.cache.Commit(key, gen, &resp, core.TagAllowance) {
		return nil, core.ErrSuperseded
	}
	cp := resp
	return &cp, nil
}

// PreorderLimit fetches the server-side bound on how far ahead a date may be
// selected. This endpoint bypasses the standard envelope.
func (c *Client) PreorderLimit(ctx context.Context) (dates.PreorderLimit, error) {
	var limit dates.PreorderLimit
	if err := c.transport.GetRaw(ctx, core.PathPreorderLim, &limit); err != nil {
		return dates.PreorderLimit{}, core.NewClientError("cart.PreorderLimit", "settings", err)
	}
	return limit, nil
}

// invalidateAfterMutation marks every cart, allowance and home query stale.
// Dependent data refetches before the mutation is visible as complete.
func (c *Client) invalidateAfterMutation(op string) {
	n := c.cache.Invalidate(core.TagCart, core.TagAllowance, core.TagHome)
	c.logger.Debug("Cart mutation invalidated caches", map[string]interface{}{
		"op":      op,
		"entries": n,
	})
}

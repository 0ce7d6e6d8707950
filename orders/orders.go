// Package orders implements checkout and order history: converting a cart
// into an order, completing an external payment when the order exceeds the
// allowance, and reading back immutable order snapshots.
//
// Checkout has two server outcomes. When the order fits inside the
// allowance the placement is final immediately. When it does not, the
// server returns a payment URL that must be opened in an embedded browsing
// surface; PaymentSession watches that surface's navigation events and
// decides the outcome from URL substrings alone.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/dates"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Session supplies the logged-in employee
type Session interface {
	EmployeeID() (int, bool)
}

// Line is one order line, captured at placement time. Unlike cart items,
// order lines are immutable snapshots independent of later product changes.
type Line struct {
	ProductID int         `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     core.Amount `json:"price"`
	NameEN    string      `json:"name_en"`
	NameAR    string      `json:"name_ar"`
	Image     string      `json:"image"`
}

// Order is a placed order as the server reports it
type Order struct {
	OrderID            int         `json:"order_id"`
	UniqueID           string      `json:"unique_id"`
	PreorderDate       string      `json:"preorder_date"`
	Subtotal           core.Amount `json:"subtotal"`
	Total              core.Amount `json:"total"`
	ExtraPayment       core.Amount `json:"extra_payment"`
	TrackingStatusText string      `json:"tracking_status_text"`
	PaymentStatusText  string      `json:"payment_status_text"`
	Items              []Line      `json:"items"`
}

// Payment is the external gateway handoff returned when an order needs a
// card payment on top of the allowance
type Payment struct {
	URL     string      `json:"payment_url"`
	OrderID int         `json:"order_id"`
	Amount  core.Amount `json:"amount"`
}

// Placement is the result of placing an order. When RequiresPayment is
// false the order is final. When true, Payment must be completed through a
// PaymentSession before the order is paid.
type Placement struct {
	RequiresPayment bool     `json:"requires_payment"`
	OrderID         int      `json:"order_id"`
	Payment         *Payment `json:"-"`
}

// Client performs checkout and order history operations
type Client struct {
	transport *core.Transport
	cache     *core.QueryCache
	session   Session
	logger    logger.Logger
}

// NewClient creates an orders client
func NewClient(transport *core.Transport, cache *core.QueryCache, session Session, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		transport: transport,
		cache:     cache,
		session:   session,
		logger:    log.With(map[string]interface{}{"component": "orders"}),
	}
}

type placeOrderRequest struct {
	EmployeeID int `json:"employee_id"`
	CartID     int `json:"cart_id"`
}

type placeOrderResponse struct {
	RequiresPayment bool        `json:"requires_payment"`
	OrderID         int         `json:"order_id"`
	PaymentURL      string      `json:"payment_url"`
	Amount          core.Amount `json:"amount"`
}

// PlaceOrder converts the cart into an order.
//
// The server clears the cart the moment this call lands, before any payment
// completes. A cancelled or failed payment therefore leaves the user with
// an empty cart, not a restored one; that matches the backend's current
// behavior and is deliberately not papered over here.
func (c *Client) PlaceOrder(ctx context.Context, cartID int) (*Placement, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	var resp placeOrderResponse
	if err := c.transport.PostJSON(ctx, core.PathPlaceOrder, placeOrderRequest{
		EmployeeID: employeeID,
		CartID:     cartID,
	}, &resp); err != nil {
		return nil, core.NewClientError("orders.PlaceOrder", "order", err)
	}

	// The cart is already gone server-side (see above), so the cached copy
	// is stale regardless of how the payment turns out
	c.cache.Invalidate(core.TagCart, core.TagAllowance, core.TagHome, core.TagOrders)

	placement := &Placement{
		RequiresPayment: resp.RequiresPayment,
		OrderID:         resp.OrderID,
	}
	if resp.RequiresPayment {
		placement.Payment = &Payment{
			URL:     resp.PaymentURL,
			OrderID: resp.OrderID,
			Amount:  resp.Amount,
		}
	}

	c.logger.Info("Order placed", map[string]interface{}{
		"order_id":         resp.OrderID,
		"requires_payment": resp.RequiresPayment,
	})
	return placement, nil
}

// BeginPayment starts a payment session for a placement that requires one
func (c *Client) BeginPayment(p *Payment) (*PaymentSession, error) {
	if p == nil || p.URL == "" {
		return nil, fmt.Errorf("orders.BeginPayment: %w: placement has no payment handoff", core.ErrInvalidConfiguration)
	}
	return newPaymentSession(p, c.cache, c.logger), nil
}

// clone detaches an order from the cache so callers can mutate their copy
// freely
func (o *Order) clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = append([]Line(nil), o.Items...)
	return &cp
}

func cloneOrders(list []Order) []Order {
	out := make([]Order, len(list))
	for i := range list {
		out[i] = *list[i].clone()
	}
	return out
}

type listOrdersRequest struct {
	EmployeeID int `json:"employee_id"`
}

type listOrdersResponse struct {
	Orders []Order `json:"orders"`
}

// List returns the employee's order history, newest first as the server
// sends it
func (c *Client) List(ctx context.Context) ([]Order, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathOrders, employeeID)
	if cached, hit := c.cache.Get(key); hit {
		return cloneOrders(cached.([]Order)), nil
	}

	gen := c.cache.Begin(key)
	var resp listOrdersResponse
	if err := c.transport.PostJSONRead(ctx, core.PathOrders, listOrdersRequest{EmployeeID: employeeID}, &resp); err != nil {
		return nil, core.NewClientError("orders.List", "order", err)
	}

	if !c.cache.Commit(key, gen, resp.Orders, core.TagOrders) {
		return nil, core.ErrSuperseded
	}
	return cloneOrders(resp.Orders), nil
}

type orderDetailResponse struct {
	Order *Order `json:"order"`
}

// Detail returns one order's immutable snapshot
func (c *Client) Detail(ctx context.Context, orderID int) (*Order, error) {
	if _, ok := c.session.EmployeeID(); !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathOrderDetail, orderID)
	if cached, hit := c.cache.Get(key); hit {
		return cached.(*Order).clone(), nil
	}

	gen := c.cache.Begin(key)
	var resp orderDetailResponse
	if err := c.transport.GetJSON(ctx, fmt.Sprintf(core.PathOrderDetail, orderID), &resp); err != nil {
		return nil, core.NewClientError("orders.Detail", "order", err)
	}
	if resp.Order == nil {
		return nil, core.NewClientError("orders.Detail", "order",
			fmt.Errorf("order %d: %w", orderID, core.ErrRequestFailed))
	}

	if !c.cache.Commit(key, gen, resp.Order, core.TagOrders) {
		return nil, core.ErrSuperseded
	}
	return resp.Order.clone(), nil
}

// Date parses the order's preorder date using local calendar fields
func (o *Order) Date() (time.Time, error) {
	return dates.Parse(o.PreorderDate)
}

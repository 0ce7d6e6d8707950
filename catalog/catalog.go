// Package catalog covers the product browsing surface: products with
// department filtering and search, departments, offers, the per-employee
// wishlist, and the parallel home-screen refresh.
package catalog

import (
	"context"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Session supplies the logged-in employee
type Session interface {
	EmployeeID() (int, bool)
}

// Product is a catalog entry. Wishlisted is per-employee; the rest is
// shared catalog data.
type Product struct {
	ID            int         `json:"id"`
	NameEN        string      `json:"name_en"`
	NameAR        string      `json:"name_ar"`
	DescriptionEN string      `json:"description_en"`
	DescriptionAR string      `json:"description_ar"`
	Price         core.Amount `json:"price"`
	OfferPrice    core.Amount `json:"offer_price"`
	Stock         int         `json:"stock"`
	DepartmentID  int         `json:"department_id"`
	Image         string      `json:"image"`
	Wishlisted    bool        `json:"is_wishlisted"`
}

// EffectivePrice returns the offer price when one is set, the list price
// otherwise
func (p *Product) EffectivePrice() core.Amount {
	if !p.OfferPrice.IsZero() {
		return p.OfferPrice
	}
	return p.Price
}

// Department is a catalog section
type Department struct {
	ID     int    `json:"id"`
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
	Image  string `json:"image"`
}

// Offer is a promoted product banner
type Offer struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	TitleEN   string `json:"title_en"`
	TitleAR   string `json:"title_ar"`
	Image     string `json:"image"`
}

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	DepartmentID int
	Search       string
}

// Client performs catalog operations
type Client struct {
	transport *core.Transport
	cache     *core.QueryCache
	session   Session
	logger    logger.Logger
}

// NewClient creates a catalog client
func NewClient(transport *core.Transport, cache *core.QueryCache, session Session, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		transport: transport,
		cache:     cache,
		session:   session,
		logger:    log.With(map[string]interface{}{"component": "catalog"}),
	}
}

type productsRequest struct {
	EmployeeID   int    `json:"employee_id"`
	DepartmentID int    `json:"department_id,omitempty"`
	Search       string `json:"search,omitempty"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

// Products lists catalog products matching the filter
func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]Product, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathProducts, employeeID, filter.DepartmentID, filter.Search)
	if cached, hit := c.cache.Get(key); hit {
		return append([]Product(nil), cached.([]Product)...), nil
	}

	gen := c.cache.Begin(key)
	var resp productsResponse
	if err := c.transport.PostJSONRead(ctx, core.PathProducts, productsRequest{
		EmployeeID:   employeeID,
		DepartmentID: filter.DepartmentID,
		Search:       filter.Search,
	}, &resp); err != nil {
		return nil, core.NewClientError("catalog.Products", "catalog", err)
	}

	if !c.cache.Commit(key, gen, resp.Products, core.TagProducts) {
		return nil, core.ErrSuperseded
	}
	return append([]Product(nil), resp.Products...), nil
}

type departmentsResponse struct {
	Departments []Department `json:"departments"`
}

// Departments lists the catalog sections. The endpoint is public; no
// session guard applies.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	key := core.Key(core.PathDepartments)
	if cached, hit := c.cache.Get(key); hit {
		return append([]Department(nil), cached.([]Department)...), nil
	}

	gen := c.cache.Begin(key)
	var resp departmentsResponse
	if err := c.transport.GetJSON(ctx, core.PathDepartments, &resp); err != nil {
		return nil, core.NewClientError("catalog.Departments", "catalog", err)
	}

	if !c.cache.Commit(key, gen, resp.Departments, core.TagHome) {
		return nil, core.ErrSuperseded
	}
	return append([]Department(nil), resp.Departments...), nil
}

type offersResponse struct {
	Offers []Offer `json:"offers"`
}

// Offers lists the active promotional banners
func (c *Client) Offers(ctx context.Context) ([]Offer, error) {
	if _, ok := c.session.EmployeeID(); !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathOffers)
	if cached, hit := c.cache.Get(key); hit {
		return append([]Offer(nil), cached.([]Offer)...), nil
	}

	gen := c.cache.Begin(key)
	var resp offersResponse
	if err := c.transport.GetJSON(ctx, core.PathOffers, &resp); err != nil {
		return nil, core.NewClientError("catalog.Offers", "catalog", err)
	}

	if !c.cache.Commit(key, gen, resp.Offers, core.TagHome) {
		return nil, core.ErrSuperseded
	}
	return append([]Offer(nil), resp.Offers...), nil
}

type wishlistToggleRequest struct {
	EmployeeID int `json:"employee_id"`
	ProductID  int `json:"product_id"`
}

type wishlistToggleResponse struct {
	Wishlisted bool `json:"is_wishlisted"`
}

// ToggleWishlist flips a product's wishlist flag for this employee and
// returns the new state
func (c *Client) ToggleWishlist(ctx context.Context, productID int) (bool, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return false, core.ErrUnauthenticated
	}

	var resp wishlistToggleResponse
	if err := c.transport.PostJSON(ctx, core.PathWishlistTog, wishlistToggleRequest{
		EmployeeID: employeeID,
		ProductID:  productID,
	}, &resp); err != nil {
		return false, core.NewClientError("catalog.ToggleWishlist", "catalog", err)
	}

	// Product listings carry the wishlist flag, so they are stale now too
	c.cache.Invalidate(core.TagProducts)
	return resp.Wishlisted, nil
}

type wishlistRequest struct {
	EmployeeID int `json:"employee_id"`
}

// Wishlist lists the employee's wishlisted products
func (c *Client) Wishlist(ctx context.Context) ([]Product, error) {
	employeeID, ok := c.session.EmployeeID()
	if !ok {
		return nil, core.ErrUnauthenticated
	}

	key := core.Key(core.PathWishlist, employeeID)
	if cached, hit := c.cache.Get(key); hit {
		return append([]Product(nil), cached.([]Product)...), nil
	}

	gen := c.cache.Begin(key)
	var resp productsResponse
	if err := c.transport.PostJSONRead(ctx, core.PathWishlist, wishlistRequest{EmployeeID: employeeID}, &resp); err != nil {
		return nil, core.NewClientError("catalog.Wishlist", "catalog", err)
	}

	if !c.cache.Commit(key, gen, resp.Products, core.TagProducts) {
		return nil, core.ErrSuperseded
	}
	return append([]Product(nil), resp.Products...), nil
}

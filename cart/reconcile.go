package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/dates"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Snapshot is the reconciled view of one preorder date: the cart, the
// allowance, and the display values derived from both.
//
// The allowance-only endpoint always reflects "today", while the cart
// endpoint is date-scoped. Display values therefore prefer the cart's
// allowance fields and fall back to the allowance endpoint, then to zero:
// cart field, allowance field, "0".
type Snapshot struct {
	Date      time.Time
	Cart      *Cart
	Allowance *Allowance

	Daily     core.Amount
	Remaining core.Amount
	Used      core.Amount
}

// Progress returns the allowance progress bar fill percentage:
// remaining/daily*100 clamped to [0,100], and 0 when the daily allowance is
// zero or negative.
func (s *Snapshot) Progress() float64 {
	return Progress(s.Remaining.Float(), s.Daily.Float())
}

// Progress computes the fill percentage for arbitrary values. Defined
// separately so the guard is testable without building a snapshot.
func Progress(remaining, daily float64) float64 {
	if daily <= 0 {
		return 0
	}
	pct := remaining / daily * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CanCheckout reports whether the date has a non-empty cart to order from
func (s *Snapshot) CanCheckout() bool {
	return s.Cart != nil && len(s.Cart.Items) > 0
}

// ExtraPayment returns the amount by which the subtotal exceeds the
// remaining allowance, payable through the external gateway
func (s *Snapshot) ExtraPayment() core.Amount {
	if s.Cart == nil {
		return ""
	}
	return s.Cart.ExtraPayment
}

// Reconciler ties a selected preorder date to its cart and allowance.
//
// The reconciler serves one selection surface: each Snapshot call represents
// the latest date the user picked and supersedes every call before it. The
// cache's per-key generations cannot catch a rapid date switch on their own,
// because date A and date B live under different keys; sel is the
// date-independent generation that does.
type Reconciler struct {
	client *Client
	logger logger.Logger
	sel    uint64
}

// NewReconciler creates a reconciler over the given cart client
func NewReconciler(client *Client, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Reconciler{
		client: client,
		logger: log.With(map[string]interface{}{"component": "reconciler"}),
	}
}

// Snapshot fetches the cart and the allowance for date in parallel and
// merges them.
//
// Both queries short-circuit before any network call when no session is
// active. A cart failure fails the snapshot; an allowance failure degrades
// to the cart's own allowance fields, which are the preferred source anyway.
//
// Each call supersedes the one before it. When a newer Snapshot starts
// before an older one finishes, the older call returns core.ErrSuperseded
// even if its responses already arrived; its data is for a date the user no
// longer has selected and must not be displayed.
func (r *Reconciler) Snapshot(ctx context.Context, date time.Time) (*Snapshot, error) {
	if _, ok := r.client.session.EmployeeID(); !ok {
		return nil, core.ErrUnauthenticated
	}
	sel := atomic.AddUint64(&r.sel, 1)

	var (
		wg           sync.WaitGroup
		cart         *Cart
		cartErr      error
		allowance    *Allowance
		allowanceErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cart, cartErr = r.client.Get(ctx, date)
	}()
	go func() {
		defer wg.Done()
		allowance, allowanceErr = r.client.Allowance(ctx, date)
	}()
	wg.Wait()

	if atomic.LoadUint64(&r.sel) != sel {
		return nil, core.ErrSuperseded
	}
	if errors.Is(cartErr, core.ErrSuperseded) || errors.Is(allowanceErr, core.ErrSuperseded) {
		return nil, core.ErrSuperseded
	}
	if cartErr != nil {
		return nil, cartErr
	}
	if allowanceErr != nil {
		r.logger.Warn("Allowance fetch failed, falling back to cart fields", map[string]interface{}{
			"date":  dates.Format(date),
			"error": core.UserMessage(allowanceErr),
		})
		allowance = nil
	}

	snap := &Snapshot{
		Date:      date,
		Cart:      cart,
		Allowance: allowance,
	}
	snap.Daily = resolve(cartAmount(cart, func(c *Cart) core.Amount { return c.DailyAllowance }),
		allowanceAmount(allowance, func(a *Allowance) core.Amount { return a.DailyMealAllowance }))
	snap.Remaining = resolve(cartAmount(cart, func(c *Cart) core.Amount { return c.RemainingAllowance }),
		allowanceAmount(allowance, func(a *Allowance) core.Amount { return a.RemainingAllowance }))
	snap.Used = resolve(cartAmount(cart, func(c *Cart) core.Amount { return c.UsedAllowance }),
		allowanceAmount(allowance, func(a *Allowance) core.Amount { return a.UsedAllowance }))

	return snap, nil
}

// resolve applies the display fallback order: first non-empty value, else "0"
func resolve(values ...core.Amount) core.Amount {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "0"
}

func cartAmount(c *Cart, pick func(*Cart) core.Amount) core.Amount {
	if c == nil {
		return ""
	}
	return pick(c)
}

func allowanceAmount(a *Allowance, pick func(*Allowance) core.Amount) core.Amount {
	if a == nil {
		return ""
	}
	return pick(a)
}

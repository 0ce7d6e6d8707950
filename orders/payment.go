package orders

import (
	"strings"
	"sync"

	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
)

// Outcome is the terminal state of a payment session
type Outcome int

const (
	// OutcomePending means the gateway has not navigated to a terminal URL yet
	OutcomePending Outcome = iota
	// OutcomeSuccess means a success URL was observed and the order is paid
	OutcomeSuccess
	// OutcomeFailure means the gateway reported failure or the user cancelled
	// inside the gateway's own pages
	OutcomeFailure
	// OutcomeCancelled means the user backed out and confirmed abandoning
	// the payment
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// URL substrings that decide a payment's fate. Matching is on the
// navigation URL only, never on page content: the gateway's pages are an
// opaque third-party surface.
var (
	successMarkers = []string{"payment/success", "status=success"}
	failureMarkers = []string{"payment/failure", "payment/cancel", "status=failed"}
)

// PaymentSession tracks one embedded-gateway payment attempt.
//
// The caller opens Payment.URL in an embedded browsing surface and feeds
// every navigation event to Observe. The session settles exactly once; all
// observations after that are ignored. A manual back action goes through
// RequestCancel/ConfirmCancel so the surface can show a confirmation dialog
// before the attempt is abandoned.
type PaymentSession struct {
	payment *Payment
	cache   *core.QueryCache
	logger  logger.Logger

	mu            sync.Mutex
	outcome       Outcome
	cancelPending bool
}

func newPaymentSession(p *Payment, cache *core.QueryCache, log logger.Logger) *PaymentSession {
	return &PaymentSession{
		payment: p,
		cache:   cache,
		logger:  log.With(map[string]interface{}{"order_id": p.OrderID}),
	}
}

// URL returns the gateway URL to open
func (s *PaymentSession) URL() string { return s.payment.URL }

// Outcome returns the session's current state
func (s *PaymentSession) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Done reports whether the session has settled
func (s *PaymentSession) Done() bool {
	return s.Outcome() != OutcomePending
}

// Observe feeds one navigation URL to the session and returns the resulting
// state. Success marks the order paid and invalidates the cart and
// allowance caches; failure discards the attempt. URLs that match neither
// marker set leave the session pending.
func (s *PaymentSession) Observe(url string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomePending {
		return s.outcome
	}

	switch {
	case matchesAny(url, successMarkers):
		s.outcome = OutcomeSuccess
		s.cancelPending = false
		s.cache.Invalidate(core.TagCart, core.TagAllowance, core.TagOrders)
		s.logger.Info("Payment completed", map[string]interface{}{
			"amount": s.payment.Amount.String(),
		})
	case matchesAny(url, failureMarkers):
		s.outcome = OutcomeFailure
		s.cancelPending = false
		s.logger.Warn("Payment failed or was cancelled at the gateway", nil)
	}
	return s.outcome
}

// RequestCancel records the user's intent to back out. It returns true when
// the caller must show a confirmation dialog; the session is not abandoned
// until ConfirmCancel. Requests on a settled session are rejected.
func (s *PaymentSession) RequestCancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomePending {
		return false
	}
	s.cancelPending = true
	return true
}

// DismissCancel withdraws a pending cancel request; the payment surface
// stays open
func (s *PaymentSession) DismissCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPending = false
}

// ConfirmCancel abandons the payment attempt. It requires a prior
// RequestCancel; confirming out of nowhere is a no-op so a stray dialog
// callback cannot kill a live payment.
func (s *PaymentSession) ConfirmCancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome != OutcomePending || !s.cancelPending {
		return false
	}
	s.outcome = OutcomeCancelled
	s.cancelPending = false
	s.logger.Info("Payment abandoned by user", nil)
	return true
}

// Err maps a settled session to the error the caller should surface, nil
// for success or a still-pending session
func (s *PaymentSession) Err() error {
	switch s.Outcome() {
	case OutcomeFailure:
		return core.ErrPaymentFailed
	case OutcomeCancelled:
		return core.ErrPaymentCancelled
	default:
		return nil
	}
}

func matchesAny(url string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(url, m) {
			return true
		}
	}
	return false
}

package grandkitchen

import (
	"github.com/sujitha-np/grandkitchen-go/auth"
	"github.com/sujitha-np/grandkitchen-go/cart"
	"github.com/sujitha-np/grandkitchen-go/catalog"
	"github.com/sujitha-np/grandkitchen-go/core"
	"github.com/sujitha-np/grandkitchen-go/employee"
	"github.com/sujitha-np/grandkitchen-go/orders"
	"github.com/sujitha-np/grandkitchen-go/pkg/dates"
	"github.com/sujitha-np/grandkitchen-go/pkg/logger"
	"github.com/sujitha-np/grandkitchen-go/pkg/store"
)

// Re-exported types so most callers only import this package

type (
	// Configuration
	Config          = core.Config
	Option          = core.Option
	StoreConfig     = core.StoreConfig
	RetryConfig     = core.RetryConfig
	LoggingConfig   = core.LoggingConfig
	TelemetryConfig = core.TelemetryConfig

	// Shared primitives
	Amount     = core.Amount
	APIError   = core.APIError
	QueryCache = core.QueryCache
	Tag        = core.Tag

	// Interfaces
	Logger = logger.Logger
	Store  = store.Store

	// Auth
	User      = auth.User
	AuthState = auth.State
	OTPInput  = auth.OTPInput

	// Cart
	Cart      = cart.Cart
	CartItem  = cart.Item
	Allowance = cart.Allowance
	Snapshot  = cart.Snapshot

	// Orders
	Order          = orders.Order
	OrderLine      = orders.Line
	Placement      = orders.Placement
	Payment        = orders.Payment
	PaymentSession = orders.PaymentSession
	PaymentOutcome = orders.Outcome

	// Catalog
	Product       = catalog.Product
	Department    = catalog.Department
	Offer         = catalog.Offer
	ProductFilter = catalog.ProductFilter
	HomeSnapshot  = catalog.HomeSnapshot

	// Employee
	Profile       = employee.Profile
	ProfileUpdate = employee.ProfileUpdate
	Notification  = employee.Notification

	// Dates
	PreorderLimit = dates.PreorderLimit
)

// Re-exported constants
const (
	StateIdentifierEntry = auth.StateIdentifierEntry
	StateOTPSent         = auth.StateOTPSent
	StateVerified        = auth.StateVerified

	OutcomePending   = orders.OutcomePending
	OutcomeSuccess   = orders.OutcomeSuccess
	OutcomeFailure   = orders.OutcomeFailure
	OutcomeCancelled = orders.OutcomeCancelled

	TagCart          = core.TagCart
	TagAllowance     = core.TagAllowance
	TagHome          = core.TagHome
	TagOrders        = core.TagOrders
	TagProducts      = core.TagProducts
	TagProfile       = core.TagProfile
	TagNotifications = core.TagNotifications
)

// Re-exported sentinel errors
var (
	ErrUnauthenticated      = core.ErrUnauthenticated
	ErrSessionExpired       = core.ErrSessionExpired
	ErrCartNotFound         = core.ErrCartNotFound
	ErrQuantityBelowMinimum = core.ErrQuantityBelowMinimum
	ErrPaymentCancelled     = core.ErrPaymentCancelled
	ErrPaymentFailed        = core.ErrPaymentFailed
	ErrSuperseded           = core.ErrSuperseded
)

// Re-exported functions
var (
	// Configuration options
	WithBaseURL        = core.WithBaseURL
	WithAPIPrefix      = core.WithAPIPrefix
	WithTimeout        = core.WithTimeout
	WithLanguage       = core.WithLanguage
	WithMemoryStore    = core.WithMemoryStore
	WithRedisStore     = core.WithRedisStore
	WithStoreNamespace = core.WithStoreNamespace
	WithRetry          = core.WithRetry
	WithLogLevel       = core.WithLogLevel
	WithTelemetry      = core.WithTelemetry
	WithConfigFile     = core.WithConfigFile

	// Date helpers; these are the only sanctioned way to build or read
	// the server's YYYY-MM-DD strings
	FormatDate        = dates.Format
	ParseDate         = dates.Parse
	EarliestOrderDate = dates.EarliestOrderDate
	ClampOrderDate    = dates.ClampOrderDate

	// Error helpers
	UserMessage = core.UserMessage

	// OTP entry widget state
	NewOTPInput = auth.NewOTPInput
)

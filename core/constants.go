package core

import "time"

// Environment variables
const (
	// Transport
	EnvBaseURL   = "GRANDK_BASE_URL"   // API base URL, e.g. https://api.gcbk.example
	EnvAPIPrefix = "GRANDK_API_PREFIX" // Versioned path prefix
	EnvTimeout   = "GRANDK_TIMEOUT"    // Request timeout, Go duration syntax

	// Session store
	EnvStoreProvider = "GRANDK_STORE_PROVIDER" // "memory" or "redis"
	EnvRedisURL      = "GRANDK_REDIS_URL"      // Redis connection URL

	// Ambient
	EnvLogLevel  = "GRANDK_LOG_LEVEL"
	EnvLanguage  = "GRANDK_LANGUAGE"
	EnvTelemetry = "GRANDK_TELEMETRY" // "true" enables tracing
)

// Version is the SDK release version
const Version = "0.3.0"

// UserAgent identifies this SDK on every request
const UserAgent = "grandkitchen-go/" + Version

// BearerHeader is the literal auth header name the backend expects. The
// server reads a header named "bearer" carrying the raw token, not the
// standard "Authorization: Bearer <token>" scheme. Do not normalize this
// unless the backend changes first.
const BearerHeader = "bearer"

// RequestIDHeader carries the per-request UUID attached by the transport
const RequestIDHeader = "X-Request-ID"

// API endpoint paths, relative to the versioned prefix
const (
	PathCartAdd      = "/employee/cart/add"
	PathCartGet      = "/employee/cart/get"
	PathCartUpdate   = "/employee/cart/update"
	PathCartRemove   = "/employee/cart/remove"
	PathPlaceOrder   = "/employee/place-order"
	PathAllowance    = "/employee/allowance/%d" // POST, form-encoded preorder_date
	PathPreorderLim  = "/settings/preorder-limit"
	PathSendOTP      = "/employee/send-otp"
	PathVerifyOTP    = "/employee/verify-otp"
	PathOrders       = "/employee/orders"
	PathOrderDetail  = "/employee/orders/%d"
	PathProducts     = "/employee/products"
	PathDepartments  = "/departments"
	PathOffers       = "/employee/offers"
	PathWishlist     = "/employee/wishlist"
	PathWishlistTog  = "/employee/wishlist/toggle"
	PathProfile      = "/employee/profile"
	PathProfileSave  = "/employee/profile/update"
	PathNotifs       = "/employee/notifications"
	PathNotifRead    = "/employee/notifications/read"
	PathDeviceToken  = "/employee/device-token"
)

// Defaults
const (
	DefaultAPIPrefix = "/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultLanguage  = "en"

	DefaultRetryAttempts  = 3
	DefaultRetryDelay     = 100 * time.Millisecond
	DefaultRetryMaxDelay  = 2 * time.Second
	DefaultBackoffFactor  = 2.0
	DefaultStoreNamespace = "grandkitchen:session"
)

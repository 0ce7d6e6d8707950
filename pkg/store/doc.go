// Package store provides the persisted key-value state used by the SDK for
// session data: the bearer token, the employee id, the cached user object, and
// the language/theme preferences.
//
// The mobile app this SDK replaces kept these values in the device key-value
// store under the keys "@auth_token", "@user_data", "@language", "@theme" and
// "@employee_id". Those key names are preserved so existing backend tooling
// and migrations keep working.
//
// # Store Interface
//
// The Store interface is string-valued, matching the original device store:
//
//	type Store interface {
//	    Set(ctx context.Context, key, value string) error
//	    Get(ctx context.Context, key string) (string, error)
//	    Delete(ctx context.Context, key string) error
//	    Exists(ctx context.Context, key string) (bool, error)
//	}
//
// Structured values (the cached user) go through SetJSON/GetJSON.
//
// # Implementations
//
// MemoryStore keeps values in process memory and is the default; RedisStore
// persists them across restarts and between replicas of a headless deployment.
//
// Keys are independent of one another. Startup hydration, language selection
// and theme selection each read and write their own key; no cross-key
// transactionality is provided or required.
package store

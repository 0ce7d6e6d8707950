package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Session keys preserved from the original device key-value store.
const (
	KeyAuthToken  = "@auth_token"
	KeyUserData   = "@user_data"
	KeyLanguage   = "@language"
	KeyTheme      = "@theme"
	KeyEmployeeID = "@employee_id"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is the persisted session state contract
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SetJSON marshals value and stores it under key
func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value for %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

// GetJSON retrieves the value under key and unmarshals it into out
func GetJSON(ctx context.Context, s Store, key string, out interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("failed to decode value for %s: %w", key, err)
	}
	return nil
}

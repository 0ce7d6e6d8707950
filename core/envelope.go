package core

import (
	"encoding/json"
	"fmt"
)

// Envelope is the standard response wrapper used by nearly all endpoints:
//
//	{ "success": bool, "data": ..., "message": "...", "errors": {field: [msgs]} }
//
// Some error responses use a top-level "error" field instead, carrying either
// a plain string or another {field: [msgs]} map. Both shapes are handled.
type Envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   json.RawMessage     `json:"error,omitempty"`
}

// DecodeEnvelope parses a response body into an Envelope. A body that is not
// a JSON object at all yields an empty failed envelope rather than an error,
// so unknown shapes degrade to the generic message instead of leaking raw
// payloads upward.
func DecodeEnvelope(body []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}
	}
	return env
}

// DecodeData unmarshals the envelope's data field into out. A nil out skips
// decoding for endpoints whose data the caller does not need.
func (e Envelope) DecodeData(out interface{}) error {
	if out == nil {
		return nil
	}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// AsAPIError converts a failed envelope into an *APIError, applying the
// message extraction precedence: explicit message string, then the first
// value of the errors (or error) field map, then a top-level error string.
func (e Envelope) AsAPIError(statusCode int) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    e.Message,
		Fields:     e.Errors,
	}

	if len(apiErr.Fields) == 0 && len(e.Error) > 0 {
		var fieldMap map[string][]string
		if err := json.Unmarshal(e.Error, &fieldMap); err == nil {
			apiErr.Fields = fieldMap
		} else if apiErr.Message == "" {
			var plain string
			if err := json.Unmarshal(e.Error, &plain); err == nil {
				apiErr.Message = plain
			}
		}
	}

	return apiErr
}

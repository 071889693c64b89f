package domain

import (
	"encoding/json"
	"fmt"
)

// Envelope is the response shape of every backend endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int `json:"-"`
}

// CodeBadResponse marks a reply whose body was not an envelope at all, such
// as a proxy error page.
const CodeBadResponse = "BAD_RESPONSE"

// EnvelopeError is the error member of a failed Envelope.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message returns the backend's error message, or a fallback when none was sent.
func (e Envelope) Message() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	if e.Error != nil && e.Error.Code != "" {
		return e.Error.Code
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Malformed reports whether the reply was not an envelope from the backend.
func (e Envelope) Malformed() bool {
	return e.Error != nil && e.Error.Code == CodeBadResponse
}

// DecodeData unmarshals the envelope payload into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, fmt.Errorf("decode envelope data: %w", ErrEmptyData)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode envelope data: %w", err)
	}
	return out, nil
}

// Response is the envelope this service writes on its own JSON endpoints.
type Response struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// OK wraps data in a successful Response.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds a failed Response.
func Fail(code, message string) Response {
	return Response{Error: &EnvelopeError{Code: code, Message: message}}
}

// Package core provides the domain types, error taxonomy and value coercion
// shared by the vehicle-data adapters, the profile reconciler and the search engine.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeConfiguration indicates a missing or invalid credential/setting
	ErrorTypeConfiguration ErrorType = "configuration_error"
	// ErrorTypeUpstream indicates a mandatory upstream source failed (transport or non-2xx)
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeNotFound indicates no usable vehicle identity could be resolved (404)
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeInvalidRequest indicates a client error (4xx)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// CarwiseError is the base error type for all errors surfaced to callers
type CarwiseError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Source     string    `json:"source,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *CarwiseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Source, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *CarwiseError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *CarwiseError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeConfiguration:
		return http.StatusInternalServerError
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *CarwiseError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewConfigurationError creates an error for a missing required credential or setting
func NewConfigurationError(source string, message string) *CarwiseError {
	return &CarwiseError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Source:  source,
	}
}

// NewUpstreamError creates an error for a failed mandatory upstream call.
// statusCode is the upstream status, or 0 for transport failures.
func NewUpstreamError(source string, statusCode int, message string, err error) *CarwiseError {
	return &CarwiseError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: statusCode,
		Source:     source,
		Err:        err,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string) *CarwiseError {
	return &CarwiseError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *CarwiseError {
	return &CarwiseError{
		Type:    ErrorTypeInvalidRequest,
		Message: message,
		Err:     err,
	}
}

// ParseUpstreamError turns a non-2xx upstream response into an UpstreamError,
// pulling a message out of the common JSON error shapes when one is present.
func ParseUpstreamError(source string, statusCode int, body []byte) *CarwiseError {
	var errorResponse struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}

	message := fmt.Sprintf("upstream returned status %d", statusCode)
	if err := json.Unmarshal(body, &errorResponse); err == nil {
		switch v := errorResponse.Error.(type) {
		case string:
			if v != "" {
				message = v
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				message = m
			}
		}
		if errorResponse.Message != "" {
			message = errorResponse.Message
		}
	}

	return NewUpstreamError(source, statusCode, message, nil)
}

func isType(err error, t ErrorType) bool {
	var ce *CarwiseError
	return errors.As(err, &ce) && ce.Type == t
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool { return isType(err, ErrorTypeConfiguration) }

// IsUpstream reports whether err is an upstream error
func IsUpstream(err error) bool { return isType(err, ErrorTypeUpstream) }

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

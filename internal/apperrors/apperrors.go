package apperrors

import (
	"errors"
	"fmt"
)

// Code identifies a stable error class surfaced to callers. Provider and
// storage errors are always mapped to one of these before leaving the core.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeInvalidAPIKey      Code = "INVALID_API_KEY"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout            Code = "TIMEOUT"
	CodeNetwork            Code = "NETWORK_ERROR"
	CodeMalformedResponse  Code = "MALFORMED_RESPONSE"
	CodeEncryption         Code = "ENCRYPTION_ERROR"
	CodeDecryption         Code = "DECRYPTION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnknown            Code = "UNKNOWN"
)

// Error carries a taxonomy code plus a human-readable, actionable message.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a validation error for caller-fixable bad input.
func NewValidation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// NewItemValidation creates a validation error citing the offending item index.
func NewItemValidation(index int, msg string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("food item %d: %s", index, msg),
		Details: map[string]any{"item_index": index},
	}
}

// NewInvalidAPIKey creates an authentication error.
func NewInvalidAPIKey(msg string) *Error {
	if msg == "" {
		msg = "invalid API key, check your key in settings"
	}
	return &Error{Code: CodeInvalidAPIKey, Message: msg}
}

// NewRateLimited creates a rate-limit error.
func NewRateLimited() *Error {
	return &Error{Code: CodeRateLimited, Message: "rate limit exceeded, wait a moment and try again"}
}

// NewServiceUnavailable creates a server-side 5xx error.
func NewServiceUnavailable() *Error {
	return &Error{Code: CodeServiceUnavailable, Message: "the AI service is currently unavailable, try again later"}
}

// NewTimeout creates a request-timeout error.
func NewTimeout() *Error {
	return &Error{Code: CodeTimeout, Message: "request timed out, check your connection and try again"}
}

// NewNetwork creates a transport-level error.
func NewNetwork(err error) *Error {
	msg := "network error, check your internet connection"
	if err != nil {
		msg = fmt.Sprintf("network error: %v", err)
	}
	return &Error{Code: CodeNetwork, Message: msg}
}

// NewMalformedResponse creates a schema/parse error for an AI reply.
func NewMalformedResponse(msg string) *Error {
	return &Error{Code: CodeMalformedResponse, Message: fmt.Sprintf("failed to parse AI response: %s", msg)}
}

// NewEncryption creates an error for a failed encrypt step.
func NewEncryption(err error) *Error {
	return &Error{Code: CodeEncryption, Message: fmt.Sprintf("encryption failed: %v", err)}
}

// NewDecryption creates an error for undecryptable stored ciphertext.
func NewDecryption(err error) *Error {
	return &Error{Code: CodeDecryption, Message: fmt.Sprintf("failed to decrypt stored API key: %v", err)}
}

// NewNotFound creates an error for operating on a missing record.
func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"id": id},
	}
}

// NewUnknown wraps an unclassified failure, preserving the original message.
func NewUnknown(err error) *Error {
	msg := "an unexpected error occurred, try again"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeUnknown, Message: msg}
}

// Is reports whether err is (or wraps) an Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the taxonomy code for err, or CodeUnknown if it carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Retryable reports whether the error class is transient and safe to retry.
// Authentication and validation failures are never transient.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeRateLimited, CodeServiceUnavailable, CodeTimeout, CodeNetwork:
		return true
	}
	return false
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeTransport = "TRANSPORT_ERROR" // network, timeout, non-2xx
	CodeStructure = "STRUCTURE_ERROR" // expected markup/JSON shape not found
	CodeContent   = "CONTENT_ERROR"   // retrieved but not meaningful
	CodeBackend   = "BACKEND_ERROR"   // credential missing or backends exhausted
)

type ScoutError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *ScoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScoutError) Unwrap() error {
	return e.Cause
}

func NewTransportError(message, url string, cause error) *ScoutError {
	return &ScoutError{
		Message: message,
		Code:    CodeTransport,
		Context: map[string]any{"url": url},
		Cause:   cause,
	}
}

func NewStructureError(message, source string) *ScoutError {
	return &ScoutError{
		Message: message,
		Code:    CodeStructure,
		Context: map[string]any{"source": source},
	}
}

func NewContentError(message, subject string) *ScoutError {
	return &ScoutError{
		Message: message,
		Code:    CodeContent,
		Context: map[string]any{"subject": subject},
	}
}

func NewBackendError(message string, cause error) *ScoutError {
	return &ScoutError{
		Message: message,
		Code:    CodeBackend,
		Cause:   cause,
	}
}

// CodeOf extracts the taxonomy code from an error chain, or "" for plain errors.
func CodeOf(err error) string {
	var se *ScoutError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

func IsTransport(err error) bool { return CodeOf(err) == CodeTransport }
func IsStructure(err error) bool { return CodeOf(err) == CodeStructure }
func IsContent(err error) bool   { return CodeOf(err) == CodeContent }
func IsBackend(err error) bool   { return CodeOf(err) == CodeBackend }

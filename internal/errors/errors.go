package errors

import (
	"fmt"
)

// DecodeError represents an image that could not be read
type DecodeError struct {
	Reason string
	Err    error
}

// Error returns the error message
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode error: %s", e.Reason)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Quantities a SizeError can report
const (
	SizeFileBytes   = "file"
	SizeImageBytes  = "image bytes"
	SizeImagePixels = "image pixels"
)

// SizeError represents an input that exceeds a byte or dimension ceiling
type SizeError struct {
	What  string
	Size  int64
	Limit int64
}

// Error returns the error message
func (e *SizeError) Error() string {
	return fmt.Sprintf("size error: %s is %d, limit is %d", e.What, e.Size, e.Limit)
}

// EncodeError represents a payload that cannot be encoded into a QR symbol
type EncodeError struct {
	PayloadLength int
	Err           error
}

// Error returns the error message
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode error for %d byte payload: %v", e.PayloadLength, e.Err)
}

// Unwrap returns the underlying error
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// ColorError represents a color spec that is neither a known name nor a hex triplet
type ColorError struct {
	Spec string
}

// Error returns the error message
func (e *ColorError) Error() string {
	return fmt.Sprintf("unknown color %q", e.Spec)
}

// CompositeWarning describes a logo overlay that failed. The QR is still produced.
type CompositeWarning struct {
	Stage string
	Err   error
}

// Error returns the warning message
func (e *CompositeWarning) Error() string {
	return fmt.Sprintf("logo composite failed during %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *CompositeWarning) Unwrap() error {
	return e.Err
}

// ValidationError represents an error when validation fails
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// StateError represents an error related to user state
type StateError struct {
	UserID  int64
	State   string
	Message string
}

// Error returns the error message
func (e *StateError) Error() string {
	return fmt.Sprintf("state error for user %d in state %s: %s", e.UserID, e.State, e.Message)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}

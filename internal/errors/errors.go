// Package errors provides domain-specific error types for tunprop.
//
// This package defines structured errors with error codes, making it easier
// to handle and test different error conditions consistently across the
// application. Errors come in two tiers: *Error is fatal and aborts a whole
// configuration pass, *DirectiveError is recoverable and only skips the
// single pushed directive it refers to.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeTopology indicates an invalid or unsupported addressing topology.
	ErrCodeTopology ErrorCode = "TOPOLOGY_ERROR"

	// ErrCodeInterface indicates a tunnel interface configuration error
	// (ifconfig/ifconfig-ipv6 handling, builder address refusal).
	ErrCodeInterface ErrorCode = "INTERFACE_ERROR"

	// ErrCodeRoute indicates a routing configuration error (route
	// installation, exclusion, redirect-gateway).
	ErrCodeRoute ErrorCode = "ROUTE_ERROR"

	// ErrCodeDHCPOption indicates an error applying a dhcp-option directive
	// (DNS, WINS, search domains, proxy settings).
	ErrCodeDHCPOption ErrorCode = "DHCP_OPTION_ERROR"

	// ErrCodeParse indicates malformed input: an address, netmask or
	// directive argument that could not be parsed.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
)

// Error represents a fatal domain error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new domain error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewTopologyError creates a new topology error.
func NewTopologyError(message string, cause error) *Error {
	return Wrap(ErrCodeTopology, message, cause)
}

// NewInterfaceError creates a new interface configuration error.
func NewInterfaceError(message string, cause error) *Error {
	return Wrap(ErrCodeInterface, message, cause)
}

// NewRouteError creates a new routing error.
func NewRouteError(message string, cause error) *Error {
	return Wrap(ErrCodeRoute, message, cause)
}

// NewDHCPOptionError creates a new dhcp-option error.
func NewDHCPOptionError(message string, cause error) *Error {
	return Wrap(ErrCodeDHCPOption, message, cause)
}

// NewParseError creates a new parse error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

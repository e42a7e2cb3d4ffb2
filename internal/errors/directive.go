package errors

import "fmt"

// DirectiveError is the recoverable error tier: it marks a single pushed
// directive as unusable without aborting the configuration pass. The route
// and dhcp-option processing loops catch it, log the rendered directive with
// the reason, and continue with the next directive.
type DirectiveError struct {
	// Directive is the rendered source directive, e.g. "[route] [10.0.0.0] [255.0.0.0]".
	Directive string
	Reason    error
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("directive skipped: %v", e.Reason)
	}
	return fmt.Sprintf("directive %s skipped: %v", e.Directive, e.Reason)
}

// Unwrap returns the reason the directive was skipped.
func (e *DirectiveError) Unwrap() error {
	return e.Reason
}

// NewDirectiveError creates a recoverable error for a single directive.
func NewDirectiveError(directive string, reason error) *DirectiveError {
	return &DirectiveError{
		Directive: directive,
		Reason:    reason,
	}
}

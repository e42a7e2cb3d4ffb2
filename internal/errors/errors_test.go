package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "error without cause",
			err:      &Error{Code: ErrCodeTopology, Message: "only topology 'subnet' and 'net30' supported"},
			expected: "[TOPOLOGY_ERROR] only topology 'subnet' and 'net30' supported",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeRoute, "failed to apply routes", errors.New("permission denied")),
			expected: "[ROUTE_ERROR] failed to apply routes: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInterface, "wrapper", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestError_Is(t *testing.T) {
	err1 := &Error{Code: ErrCodeRoute, Message: "test error"}
	err2 := &Error{Code: ErrCodeRoute, Message: "another error"}
	err3 := &Error{Code: ErrCodeDHCPOption, Message: "dhcp error"}

	if !err1.Is(err2) {
		t.Errorf("Expected errors with same code to match")
	}

	if err1.Is(err3) {
		t.Errorf("Expected errors with different codes to not match")
	}
}

func TestError_IsViaErrorsPackage(t *testing.T) {
	err := NewRouteError("tun_builder_add_route failed", errors.New("refused"))

	if !errors.Is(err, &Error{Code: ErrCodeRoute}) {
		t.Errorf("Expected errors.Is to match by code")
	}
}

func TestDirectiveError(t *testing.T) {
	reason := New(ErrCodeParse, "route is not IPv4")
	err := NewDirectiveError("[route] [::1] [128]", reason)

	expected := "directive [route] [::1] [128] skipped: [PARSE_ERROR] route is not IPv4"
	if got := err.Error(); got != expected {
		t.Errorf("Error() = %v, want %v", got, expected)
	}

	if !errors.Is(err, &Error{Code: ErrCodeParse}) {
		t.Errorf("Expected DirectiveError to unwrap to its reason")
	}

	var de *DirectiveError
	if !errors.As(err, &de) {
		t.Errorf("Expected errors.As to find DirectiveError")
	}
}

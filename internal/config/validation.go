package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a single validation failure with its field context.
type ValidationError struct {
	FieldPath string // dot-notation field path, e.g. "session.mtu"
	Message   string
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("profile validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their toml names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min", "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max", "lte":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "ip":
		return "must be a valid IP address"
	case "eq=0|gte=68":
		return "must be 0 (unset) or >= 68"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

func convertValidatorErrors(err error, prefix string) ValidationErrors {
	var out ValidationErrors
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			path := e.Field()
			if prefix != "" {
				path = prefix + "." + path
			}
			out = append(out, ValidationError{FieldPath: path, Message: getValidationMessage(e)})
		}
		return out
	}
	out = append(out, ValidationError{FieldPath: prefix, Message: err.Error()})
	return out
}

// Validate checks the whole profile and returns every error found.
func (p *Profile) Validate() error {
	var validationErrors ValidationErrors

	if p.Session == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "session",
			Message:   "profile must contain a 'session' section",
		})
	} else if err := validate.Struct(p.Session); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "session")...)
	}

	if p.Remotes != nil {
		if err := validate.Struct(p.Remotes); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "remotes")...)
		}
	}

	if p.Options == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "options",
			Message:   "profile must contain an 'options' section",
		})
	} else {
		hasFile := p.Options.File != ""
		hasInline := p.Options.Inline != ""
		if hasFile == hasInline {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "options",
				Message:   "exactly one of 'file' and 'inline' must be set",
			})
		}
	}

	if p.Network != nil {
		if err := validate.Struct(p.Network); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "network")...)
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

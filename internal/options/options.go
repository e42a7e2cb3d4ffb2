// Package options provides a read-only view over the structured directive
// list produced by the tunnel-negotiation protocol layer.
//
// A directive ("option") is a name plus ordered positional string arguments.
// Several directives may share a name; they are independent and keep their
// push order. Lookup-by-name returns the first match, GetAll returns every
// match in order.
package options

import (
	"fmt"
	"strings"

	"github.com/ovpnclient/tunprop/internal/errors"
)

const (
	// renderTrunc caps the rendered length of a single argument in
	// diagnostics output.
	renderTrunc = 64
)

// Option is a single pushed directive: element 0 is the directive name,
// the remaining elements are its positional arguments.
type Option []string

// Name returns the directive name, or "" for an empty option.
func (o Option) Name() string {
	if len(o) == 0 {
		return ""
	}
	return o[0]
}

// Get returns the positional element at index i. An out-of-range index is a
// caller-detectable arity error, never a silent truncation.
func (o Option) Get(i int) (string, error) {
	if i < 0 || i >= len(o) {
		return "", errors.Newf(errors.ErrCodeParse,
			"option '%s' requires at least %d arguments", o.Name(), i)
	}
	return o[i], nil
}

// GetOptional returns the positional element at index i, or "" when absent.
func (o Option) GetOptional(i int) string {
	if i < 0 || i >= len(o) {
		return ""
	}
	return o[i]
}

// Size returns the number of elements including the directive name.
func (o Option) Size() int {
	return len(o)
}

// ExactArgs fails unless the option has exactly n elements (name included).
func (o Option) ExactArgs(n int) error {
	if len(o) != n {
		return errors.Newf(errors.ErrCodeParse,
			"option '%s' requires exactly %d arguments, got %d", o.Name(), n, len(o))
	}
	return nil
}

// MinArgs fails unless the option has at least n elements (name included).
func (o Option) MinArgs(n int) error {
	if len(o) < n {
		return errors.Newf(errors.ErrCodeParse,
			"option '%s' requires at least %d arguments, got %d", o.Name(), n, len(o))
	}
	return nil
}

// Render formats the option for diagnostics: each element bracketed, long
// elements truncated. Example: "[route] [10.0.0.0] [255.0.0.0]".
func (o Option) Render() string {
	parts := make([]string, len(o))
	for i, e := range o {
		if len(e) > renderTrunc {
			e = e[:renderTrunc] + "..."
		}
		parts[i] = "[" + e + "]"
	}
	return strings.Join(parts, " ")
}

// OptionList is an ordered list of pushed directives.
type OptionList []Option

// Get returns the first directive with the given name.
func (l OptionList) Get(name string) (Option, bool) {
	for _, o := range l {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// GetAll returns every directive with the given name, in push order.
func (l OptionList) GetAll(name string) []Option {
	var ret []Option
	for _, o := range l {
		if o.Name() == name {
			ret = append(ret, o)
		}
	}
	return ret
}

// Exists reports whether at least one directive with the given name was
// pushed.
func (l OptionList) Exists(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Parse splits directive text (one directive per line, whitespace-separated
// arguments) into an OptionList. Blank lines and '#' or ';' comment lines
// are skipped. This covers both config-file style input and the
// comma-separated PUSH_REPLY form when pre-split by the session layer.
func Parse(text string) (OptionList, error) {
	var list OptionList
	for lineno, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields, err := splitFields(line)
		if err != nil {
			return nil, errors.NewParseError(fmt.Sprintf("line %d", lineno+1), err)
		}
		if len(fields) > 0 {
			list = append(list, Option(fields))
		}
	}
	return list, nil
}

// splitFields splits a directive line on whitespace, honoring double-quoted
// arguments so pushed values may contain spaces.
func splitFields(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			if inQuote {
				fields = append(fields, cur.String())
				cur.Reset()
				inQuote = false
			} else {
				flush()
				inQuote = true
			}
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, errors.Newf(errors.ErrCodeParse, "unterminated quote in '%s'", line)
	}
	flush()
	return fields, nil
}

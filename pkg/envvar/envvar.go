// Package envvar applies environment variable overrides onto configuration
// fields. Each helper is a no-op when the variable name is empty, the
// variable is unset, or its value does not parse.
package envvar

import (
	"os"
	"strconv"
	"strings"
)

// Lookup returns the value of the named variable and whether it was set to
// a non-empty string.
func Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// String overwrites dst with the variable's value.
func String(name string, dst *string) {
	if v, ok := Lookup(name); ok {
		*dst = v
	}
}

// Int overwrites dst with the variable parsed as a base-10 integer.
func Int(name string, dst *int) {
	if v, ok := Lookup(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Float overwrites dst with the variable parsed as a float.
func Float(name string, dst *float64) {
	if v, ok := Lookup(name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Bool overwrites dst with the variable parsed by strconv.ParseBool.
func Bool(name string, dst *bool) {
	if v, ok := Lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List overwrites dst with the comma-separated, trimmed, non-empty items of
// the variable.
func List(name string, dst *[]string) {
	v, ok := Lookup(name)
	if !ok {
		return
	}

	items := make([]string, 0)
	for item := range strings.SplitSeq(v, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	*dst = items
}

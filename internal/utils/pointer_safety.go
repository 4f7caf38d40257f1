package utils

import "strings"

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Present reports whether an optional wire string was sent with content.
// A missing field, an explicit null and a blank string all count as absent.
func Present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

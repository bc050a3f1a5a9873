package domain

import (
	"strings"
	"unicode"
)

// Destination is a preset destination label offered next to the free-text
// destination field.
type Destination struct {
	Slug string
	Name string
}

// Activity is a preset activity category.
type Activity struct {
	Slug string
	Name string
}

// Slugify lowercases name and joins its alphanumeric runs with hyphens:
// "Food & Dining" becomes "food-dining".
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

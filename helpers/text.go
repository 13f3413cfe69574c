package helpers

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims and lower-cases s for trigger matching
func Normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

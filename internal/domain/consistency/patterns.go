package consistency

import "regexp"

// Matcher reports whether a string has a given format.
type Matcher interface {
	MatchString(s string) bool
}

// Pattern is a named string format.
type Pattern struct {
	Name    string
	Matcher Matcher
}

// DefaultPatterns is the built-in format bank, in priority order: on equal
// match rates the earlier pattern wins.
var DefaultPatterns = []Pattern{
	{Name: "iso_date", Matcher: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{Name: "us_date", Matcher: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)},
	{Name: "email", Matcher: regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)},
	{Name: "phone_us", Matcher: regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)},
	{Name: "phone_intl", Matcher: regexp.MustCompile(`^\+\d{1,3}[ -]?\d{4,14}$`)},
	{Name: "number", Matcher: regexp.MustCompile(`^-?\d+(\.\d+)?$`)},
	{Name: "currency", Matcher: regexp.MustCompile(`^\$\d+(\.\d{2})?$`)},
}

// lengthFormat names the fallback when no pattern is dominant.
const lengthFormat = "length"

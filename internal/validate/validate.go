package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reASIN = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)
)

// ASIN validates a product identifier taken from a path or body.
func ASIN(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reASIN.MatchString(s)
}

// Q normalises a search query: trims, caps the length, rejects control
// characters. An empty query is valid and means "no text filter".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 100 {
		return "", false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return s, true
}

// UserID validates a positive integer user id.
func UserID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

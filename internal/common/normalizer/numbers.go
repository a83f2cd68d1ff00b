package normalizer

import (
	"strconv"
	"strings"
)

// ParseCount strips every non-digit character and parses what is left.
// An empty or non-numeric result yields nil ("not stated"), never zero.
func ParseCount(s string) *int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

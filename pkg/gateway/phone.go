package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyPhone = errors.New("phone number is required")

// NormalizePhone converts a user-entered phone number to international
// format for the given country. Spaces and dashes are stripped; a leading
// "0" is replaced by the country's dial prefix; a number already carrying
// "+" passes through unchanged; anything else gets the prefix prepended.
func NormalizePhone(raw string, country Country) (string, error) {
	num := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if num == "" {
		return "", ErrEmptyPhone
	}
	digits := num
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid phone number %q", raw)
		}
	}
	switch {
	case strings.HasPrefix(num, "+"):
		return num, nil
	case strings.HasPrefix(num, "0"):
		return country.DialPrefix() + num[1:], nil
	default:
		return country.DialPrefix() + num, nil
	}
}

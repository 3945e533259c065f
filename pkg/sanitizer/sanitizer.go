package sanitizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "NP"

// NormalizePlate uppercases a plate and strips all whitespace so that
// "ba 2 pa 1234" and "BA2PA1234" index and compare as the same vehicle.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range plate {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// SanitizePhone parses and reformats a phone number into E.164. Numbers
// without a country code are assumed local.
func SanitizePhone(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number: %s", trimmed)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned for numbers that are not valid Egyptian
// mobile or landline numbers.
var ErrInvalidPhone = errors.New("phone number must be 11 digits with a valid Egyptian prefix")

// Egyptian numbering plan prefixes. Mobile carriers use 010/011/012/015;
// 02 and 03 are the Cairo and Alexandria landline codes; the 04x-09x
// ranges cover the regional landline areas.
var validPhonePrefixes = buildPhonePrefixes()

func buildPhonePrefixes() []string {
	prefixes := []string{"010", "011", "012", "015", "02", "03"}
	for _, zone := range []string{"04", "05", "06", "07", "08", "09"} {
		for d := '0'; d <= '9'; d++ {
			prefixes = append(prefixes, zone+string(d))
		}
	}
	return prefixes
}

// NormalizePhoneNumber strips formatting from an Egyptian phone number and
// returns its 11-digit local form. International numbers written with the
// country code ("+20 100 123 4567", "20...") are converted to the local
// "0..." form first. Anything that does not come out as 11 digits with a
// recognized prefix fails with ErrInvalidPhone.
func NormalizePhoneNumber(value string) (string, error) {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// Convert international format (+20...) to local format
	if strings.HasPrefix(digits, "20") && len(digits) == 12 {
		digits = "0" + digits[2:]
	}

	if len(digits) != 11 {
		return "", ErrInvalidPhone
	}

	for _, prefix := range validPhonePrefixes {
		if strings.HasPrefix(digits, prefix) {
			return digits, nil
		}
	}
	return "", ErrInvalidPhone
}

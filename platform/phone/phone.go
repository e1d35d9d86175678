// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number carries no explicit country prefix.
const DefaultRegion = "IN"

// NormalizeE164 formats a phone number to E.164. It returns the empty
// string when the input does not parse to a valid number for the region,
// so callers can treat "" as the single invalid marker.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, regionOrDefault(region))
	if err != nil {
		return ""
	}

	if !phonenumbers.IsValidNumber(number) {
		return ""
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsValid reports whether the input parses to a valid number for the region.
// WhatsApp delivery requires a real, diallable number, so the funnel rejects
// anything that fails this check.
func IsValid(input, region string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}

	number, err := phonenumbers.Parse(trimmed, regionOrDefault(region))
	if err != nil {
		return false
	}

	return phonenumbers.IsValidNumber(number)
}

func regionOrDefault(region string) string {
	if strings.TrimSpace(region) == "" {
		return DefaultRegion
	}
	return strings.ToUpper(strings.TrimSpace(region))
}

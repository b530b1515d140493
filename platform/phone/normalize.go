// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// The platform serves customers in France and Morocco; numbers without an
// international prefix are tried against both regions, France first.
var defaultRegions = []string{"FR", "MA"}

// NormalizeE164 formats a phone number to E.164. If parsing fails for every
// candidate region, it returns the trimmed input unchanged.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	for _, region := range defaultRegions {
		number, err := phonenumbers.Parse(trimmed, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(number) {
			return phonenumbers.Format(number, phonenumbers.E164)
		}
	}

	return trimmed
}

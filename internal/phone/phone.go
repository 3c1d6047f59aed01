// Package phone normalizes guest WhatsApp numbers to E.164 before they are
// stored on a booking.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize parses a raw number and returns it in E.164 format. Numbers
// without a country code are interpreted against defaultRegion.
func Normalize(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)

	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", err
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", phonenumbers.ErrNotANumber
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

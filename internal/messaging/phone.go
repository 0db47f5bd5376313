package messaging

import (
	"regexp"
	"strings"
)

var phoneDigitsRe = regexp.MustCompile(`\d`)

func sanitizePhone(value string) string {
	if value == "" {
		return ""
	}
	digits := phoneDigitsRe.FindAllString(value, -1)
	return strings.Join(digits, "")
}

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
func NormalizeE164(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// USToE164 prefixes a 10 digit US number with the +1 country code. Numbers
// already carrying the leading 1 are only normalized.
func USToE164(tenDigits string) string {
	e164 := NormalizeE164(tenDigits)
	if e164 == "" || (len(e164) == 12 && strings.HasPrefix(e164, "+1")) {
		return e164
	}
	return "+1" + e164[1:]
}

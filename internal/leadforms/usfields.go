package leadforms

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var (
	zipPattern     = regexp.MustCompile(`^(\d{5})(?:-?(\d{4}))?$`)
	phoneSeparator = strings.NewReplacer(" ", "", "(", "", ")", "", "-", "", ".", "")
)

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
}

// NormalizePhone reduces a US phone number to its 10 bare digits. A leading
// country code of 1 is accepted and dropped. '+' is only allowed as the first
// character.
func NormalizePhone(raw string) (string, bool) {
	digits := phoneSeparator.Replace(strings.TrimPrefix(strings.TrimSpace(raw), "+"))
	if digits == "" {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

// NormalizeZip returns NNNNN or NNNNN-NNNN.
func NormalizeZip(raw string) (string, bool) {
	m := zipPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	if m[2] == "" {
		return m[1], true
	}
	return m[1] + "-" + m[2], true
}

// NormalizeState upper-cases a two letter state code and checks it against
// the 50 states.
func NormalizeState(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := usStates[code]; !ok {
		return "", false
	}
	return code, true
}

func registerUSFields(v *validator.Validate) {
	_ = v.RegisterValidation("us_phone", func(fl validator.FieldLevel) bool {
		_, ok := NormalizePhone(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("us_zip", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeZip(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("us_state", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeState(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("whole_number", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("positive_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n > 0
	})
}

// message maps a failed validation tag to the text shown next to the field.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "mailbox":
		return "Enter a valid email address."
	case "us_phone":
		return "Phone numbers must be in XXX-XXX-XXXX format."
	case "us_zip":
		return "Enter a zip code in the format XXXXX or XXXXX-XXXX."
	case "us_state":
		return "Enter a U.S. state or territory."
	case "whole_number":
		return "Enter a whole number."
	case "positive_int":
		return "Ensure this value is greater than or equal to 1."
	default:
		return "Enter a valid value."
	}
}

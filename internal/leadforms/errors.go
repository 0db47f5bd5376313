package leadforms

import (
	"sort"
	"strings"
)

// EmailOrPhoneRequired is attached to both contact fields when neither holds
// a usable value.
const EmailOrPhoneRequired = "At least one of email or phone have to be provided"

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message.
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Fields returns the failing field names sorted.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e FieldErrors) merge(other FieldErrors) {
	for f, msgs := range other {
		e[f] = append(e[f], msgs...)
	}
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "leadforms: invalid submission: " + strings.Join(parts, "; ")
}

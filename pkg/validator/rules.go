package validator

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails on an empty or blank string.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLen fails when value is longer than max characters.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ValidEmail accepts a bare RFC 5322 address whose domain has at least two
// labels.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			labels := strings.Split(domain, ".")
			return len(labels) > 1 && !slices.Contains(labels, "")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// InListString fails when value is not one of allowed.
func InListString(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: "must be one of: " + strings.Join(allowed, ", ")},
	}
}

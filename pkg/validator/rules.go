package validator

import (
	"fmt"
	"regexp"
)

var (
	// emailRegex is deliberately permissive; real deliverability is proven by
	// the reset-link and OTP mails, not by the pattern.
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// employeeRangeRegex matches the bracketed employee-count interval form
	// accepted at registration: "[100,500]" or open-ended "[500,]".
	employeeRangeRegex = regexp.MustCompile(`^\[\d+,\d*\]$`)
)

// Required fails on empty strings.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return value != "" },
		Error: ValidationError{Field: field, Message: "field is required", Type: "value_error.missing"},
	}
}

// ValidEmail checks basic email shape.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool { return emailRegex.MatchString(value) },
		Error: ValidationError{Field: field, Message: "value is not a valid email address", Type: "value_error.email"},
	}
}

// LengthBetween bounds a string length inclusively.
func LengthBetween(field, value string, min, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min && len(value) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("length must be between %d and %d characters", min, max),
			Type:    "value_error.str.length",
		},
	}
}

// MaxLength bounds a string length from above; empty strings pass so it
// composes with optional fields.
func MaxLength(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("length must be at most %d characters", max),
			Type:    "value_error.str.length",
		},
	}
}

// IntBetween bounds an integer exclusively on both ends.
func IntBetween(field string, value, gt, lt int) Rule {
	return Rule{
		Check: func() bool { return value > gt && value < lt },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be greater than %d and less than %d", gt, lt),
			Type:    "value_error.number.range",
		},
	}
}

// OneOf checks membership in a fixed set of allowed integer values.
func OneOf(field string, value int, allowed ...int) Rule {
	return Rule{
		Check: func() bool {
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Error: ValidationError{Field: field, Message: "value is not a valid choice", Type: "value_error.choice"},
	}
}

// EmployeeRange validates the bracketed employee-count interval syntax.
// Empty values pass; the field is optional at registration.
func EmployeeRange(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || employeeRangeRegex.MatchString(value) },
		Error: ValidationError{
			Field:   field,
			Message: `value must match "[min,max]" or "[min,]"`,
			Type:    "value_error.str.regex",
		},
	}
}

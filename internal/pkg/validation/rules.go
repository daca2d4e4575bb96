package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Validation rule patterns
var (
	// Phone validation pattern - international dialing format
	PhonePattern = `^\+?[1-9]\d{1,14}$`

	// Email validation pattern
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`

	// Password min length
	PasswordMinLength = 6

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100

	// Semester bounds
	SemesterMin = 1
	SemesterMax = 8
)

// CGPA bounds. Decimal comparison, not float, so 4.00 is accepted and 4.01
// is rejected without drift.
var (
	CGPAMin = decimal.NewFromInt(0)
	CGPAMax = decimal.NewFromInt(4)
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Phone *regexp.Regexp
	Email *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
	Email: regexp.MustCompile(EmailPattern),
}

// ValidPhoneNumber reports whether the value matches the international
// dialing pattern.
func ValidPhoneNumber(value string) bool {
	return CompiledPatterns.Phone.MatchString(value)
}

// ValidEmail reports whether the value looks like an email address.
func ValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(value)
}

// ValidPassword reports whether the password meets the minimum length.
func ValidPassword(value string) bool {
	return len(value) >= PasswordMinLength
}

// ValidSemester reports whether the semester is within the allowed range.
func ValidSemester(semester int) bool {
	return semester >= SemesterMin && semester <= SemesterMax
}

// ValidCGPA reports whether the CGPA is within [0.00, 4.00].
func ValidCGPA(cgpa decimal.Decimal) bool {
	return cgpa.GreaterThanOrEqual(CGPAMin) && cgpa.LessThanOrEqual(CGPAMax)
}

package questionnaire

import (
	"regexp"
	"strings"
)

var (
	// local@domain.tld, no whitespace in any part.
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// E.164: leading +, non-zero first digit, 6-14 more digits.
	phoneShape = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// ValidEmail reports whether value matches the local@domain.tld shape.
func ValidEmail(value string) bool {
	return emailShape.MatchString(value)
}

// ValidPhone reports whether value, with spaces, hyphens and parentheses
// stripped, matches the international E.164 shape.
func ValidPhone(value string) bool {
	return phoneShape.MatchString(phoneSeparators.Replace(value))
}

// answerSatisfies is the pure per-kind validation rule behind CanAdvance.
// Phone numbers are always optional: an empty value passes regardless of
// the required flag, a non-empty one must have a valid shape.
func answerSatisfies(q Question, a Answer) bool {
	if q.Kind == KindPhone {
		if a.Text == "" {
			return true
		}
		return ValidPhone(a.Text)
	}

	if !q.Required {
		return true
	}

	switch q.Kind {
	case KindEmail:
		return ValidEmail(a.Text)
	case KindMultiChoice:
		return a.Kind == ValueList && len(a.List) > 0
	case KindDropdown:
		return a.Kind == ValueText && a.Text != ""
	case KindPersonalDetails:
		name := strings.TrimSpace(a.Details.FullName)
		return a.Kind == ValueDetails && len(name) > 1 && ValidEmail(a.Details.Email)
	case KindFreeText:
		return a.Kind == ValueText && strings.TrimSpace(a.Text) != ""
	default: // single choice
		return a.Kind == ValueText && a.Text != ""
	}
}

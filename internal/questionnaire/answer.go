package questionnaire

// ValueKind tags the shape of a staged answer so validation and submission
// assembly can branch exhaustively instead of type-switching an untyped map.
type ValueKind string

const (
	ValueText    ValueKind = "text"
	ValueList    ValueKind = "list"
	ValueDetails ValueKind = "details"
)

// PersonalDetails is the composite answer of the final personal-details
// step. DateOfBirth is always optional.
type PersonalDetails struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Email       string `json:"email"`
}

// Answer is a tagged union over the three value shapes a question can
// produce: a single string, a list of strings, or personal details.
type Answer struct {
	Kind    ValueKind       `json:"kind"`
	Text    string          `json:"text,omitempty"`
	List    []string        `json:"list,omitempty"`
	Details PersonalDetails `json:"details,omitempty"`
}

// Text answer for single-choice, free-text, email, phone and dropdown steps.
func TextAnswer(value string) Answer {
	return Answer{Kind: ValueText, Text: value}
}

// List answer for multi-choice steps.
func ListAnswer(values ...string) Answer {
	return Answer{Kind: ValueList, List: values}
}

// Details answer for the composite personal-details step.
func DetailsAnswer(details PersonalDetails) Answer {
	return Answer{Kind: ValueDetails, Details: details}
}

// IsEmpty reports whether the answer carries no usable value for its shape.
func (a Answer) IsEmpty() bool {
	switch a.Kind {
	case ValueText:
		return a.Text == ""
	case ValueList:
		return len(a.List) == 0
	case ValueDetails:
		return a.Details == (PersonalDetails{})
	default:
		return true
	}
}

// Raw returns the JSON-friendly representation used when flattening the
// answer set into the submission's raw answer map.
func (a Answer) Raw() any {
	switch a.Kind {
	case ValueList:
		return a.List
	case ValueDetails:
		return a.Details
	default:
		return a.Text
	}
}

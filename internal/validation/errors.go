package validation

// Code classifies a rejection.
type Code string

const (
	CodeInput          Code = "input"
	CodeNotFound       Code = "not_found"
	CodeDuplicate      Code = "duplicate"
	CodeNoRelationship Code = "no_relationship"
	CodeCanceled       Code = "canceled"
)

// User-facing rejection reasons.
const (
	ReasonEmpty          = "Word cannot be empty"
	ReasonNotAlpha       = "Word must contain only letters"
	ReasonNotFound       = "Word not found in dictionary"
	ReasonDuplicate      = "Cannot use the same word twice"
	ReasonNoRelationship = "Words must either share at least 4 letters or have a valid relationship"
	ReasonCanceled       = "Validation was cancelled"
)

// RuleError is a user-facing rejection.
type RuleError struct {
	Code   Code
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

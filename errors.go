package wayfare

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a trip request or LLM request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrGeocode indicates the destination could not be resolved to a coordinate.
	ErrGeocode = errors.New("destination could not be geocoded")

	// ErrExternalService indicates an upstream transport or API failure.
	ErrExternalService = errors.New("external service error")

	// ErrGeneration indicates the initial itinerary could not be generated.
	ErrGeneration = errors.New("itinerary generation failed")

	// ErrEmptyInput indicates a blank refinement request.
	ErrEmptyInput = errors.New("please enter your requested changes before refining")

	// ErrTerminated indicates an operation on a terminated session.
	ErrTerminated = errors.New("session terminated")

	// ErrNotReady indicates refinement was requested before an itinerary exists.
	ErrNotReady = errors.New("no itinerary generated yet")

	// ErrNotSeeded indicates an append to a conversation with no initial itinerary.
	ErrNotSeeded = errors.New("conversation not seeded")

	// ErrTurnOrder indicates an append that would break human/ai alternation.
	ErrTurnOrder = errors.New("conversation turn out of order")
)

// Field names reported by Validate.
const (
	FieldDestination = "destination"
	FieldDates       = "dates"
	FieldBudget      = "budget"
	FieldInterests   = "interests"
)

// FieldError describes a single invalid trip request field.
type FieldError struct {
	Field   string
	Message string
	Err     error // optional cause, e.g. ErrGeocode
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap reports ErrValidation and the cause, if any.
func (e FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// ValidationErrors is the full list of problems found in one Validate call.
// Order follows the check order: destination, dates, budget, interests.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each FieldError to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Field returns the error for the named field, if present.
func (v ValidationErrors) Field(name string) (FieldError, bool) {
	for _, fe := range v {
		if fe.Field == name {
			return fe, true
		}
	}
	return FieldError{}, false
}

// Messages returns the human-readable message of every entry.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return msgs
}

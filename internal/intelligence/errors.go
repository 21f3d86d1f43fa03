package intelligence

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode enumerates interpretation failure reasons.
type ErrorCode string

const (
	CodeIntentUnparseable ErrorCode = "INTENT_UNPARSEABLE"
	CodeFieldsUnparseable ErrorCode = "FIELDS_UNPARSEABLE"
	CodeMemberNotFound    ErrorCode = "MEMBER_NOT_FOUND"
	CodeActivityNotFound  ErrorCode = "ACTIVITY_NOT_FOUND"
	CodeUnknownAction     ErrorCode = "UNKNOWN_ACTION"
)

const activityNotFoundSuggestion = "Try being more specific with the member name, activity name, and date"

// InterpretError is returned when an instruction cannot be turned into a
// Command. Only the fields relevant to Code are populated.
type InterpretError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// MEMBER_NOT_FOUND
	AttemptedName string   `json:"attemptedName,omitempty"`
	Roster        []string `json:"roster,omitempty"`

	// ACTIVITY_NOT_FOUND
	AttemptedID string `json:"attemptedId,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`

	// UNKNOWN_ACTION carries the action as returned; the unparseable codes
	// carry the capability's raw text.
	Raw string `json:"raw,omitempty"`

	Err error `json:"-"`
}

func (e *InterpretError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *InterpretError) Unwrap() error {
	return e.Err
}

// AsInterpretError unwraps err to an *InterpretError.
func AsInterpretError(err error) (*InterpretError, bool) {
	var ie *InterpretError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// HasCode reports whether err is an InterpretError with the given code.
func HasCode(err error, code ErrorCode) bool {
	ie, ok := AsInterpretError(err)
	return ok && ie.Code == code
}

func intentUnparseable(raw string, err error) *InterpretError {
	return &InterpretError{
		Code:    CodeIntentUnparseable,
		Message: "could not determine what you want to do",
		Raw:     raw,
		Err:     err,
	}
}

func fieldsUnparseable(msg, raw string, err error) *InterpretError {
	return &InterpretError{
		Code:    CodeFieldsUnparseable,
		Message: msg,
		Raw:     raw,
		Err:     err,
	}
}

func memberNotFound(name string, roster []string) *InterpretError {
	return &InterpretError{
		Code:          CodeMemberNotFound,
		Message:       fmt.Sprintf("member %q not found (available: %s)", name, strings.Join(roster, ", ")),
		AttemptedName: name,
		Roster:        roster,
	}
}

func activityNotFound(id string) *InterpretError {
	return &InterpretError{
		Code:        CodeActivityNotFound,
		Message:     "no matching activity found",
		AttemptedID: id,
		Suggestion:  activityNotFoundSuggestion,
	}
}

func unknownAction(raw string) *InterpretError {
	return &InterpretError{
		Code:    CodeUnknownAction,
		Message: fmt.Sprintf("unknown action %q", raw),
		Raw:     raw,
	}
}

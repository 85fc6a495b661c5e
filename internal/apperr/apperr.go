// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Machine-checkable codes that narrow a kind.
const (
	CodeInvalidInput        = "invalid_input"
	CodeInvalidAssignee     = "invalid_assignee"
	CodeInvalidTransition   = "invalid_transition"
	CodeStatusNotConfigured = "status_not_configured"
	CodeInUse               = "in_use"
	CodeDuplicate           = "duplicate"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a single invalid field.
func Validation(field, msg string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidInput,
		Message: msg,
		Fields:  map[string]string{field: msg},
	}
}

// ValidationFields reports several invalid fields at once.
func ValidationFields(fields map[string]string) *Error {
	msg := "the given data was invalid"
	if len(fields) == 1 {
		for _, v := range fields {
			msg = v
		}
	}
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidInput,
		Message: msg,
		Fields:  fields,
	}
}

// InvalidAssignee reports an assignee outside the task's project.
func InvalidAssignee() *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidAssignee,
		Message: "the selected user is not a member of this project",
		Fields:  map[string]string{"user_id": "not a project member"},
	}
}

// Forbidden reports a caller without rights on the target.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: msg}
}

// Unauthorized reports a request without a valid caller.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: msg}
}

// NotFound reports a missing entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: NotExist(entity)}
}

// Misconfigured reports a required configuration row missing from the store.
func Misconfigured(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeStatusNotConfigured, Message: msg}
}

// Conflict reports a state or constraint conflict.
func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: "internal server error", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// CodeOf returns the code of err, empty for unclassified errors.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes write failure semantics across the ingestion writer.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Error is the canonical storage write error. Scope names the unit of work
// that was rolled back, e.g. "course" or "chapter:2".
type Error struct {
	Code    ErrorCode
	Op      string
	Scope   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	if scope := strings.TrimSpace(e.Scope); scope != "" {
		if op == "" {
			op = scope
		} else {
			op = op + "[" + scope + "]"
		}
	}
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// WithScope returns a copy of err (when it is an *Error) tagged with scope.
// Other errors are returned unchanged.
func WithScope(err error, scope string) error {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return err
	}
	cp := *aggErr
	cp.Scope = strings.TrimSpace(scope)
	return &cp
}

func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// ScopeOf extracts the rolled-back scope when available.
func ScopeOf(err error) string {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Scope
}

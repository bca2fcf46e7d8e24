package mediator

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

// ErrNotFound is the generic sentinel handlers return for a missing target.
var ErrNotFound = errors.New("not found")

// Error lets a handler pick the outcome code explicitly. Message is shown to
// the caller for every code except CodeServerError, whose message is always
// replaced by a sanitized one.
type Error struct {
	Code    Code
	Message string
	Details map[string][]string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := strings.TrimSpace(e.Message)
	switch {
	case msg != "" && e.Cause != nil:
		return msg + ": " + e.Cause.Error()
	case msg != "":
		return msg
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NotFound(message string) error {
	return &Error{Code: CodeNotFound, Message: message, Cause: ErrNotFound}
}

func Forbidden(message string) error {
	return &Error{Code: CodeForbidden, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// InvalidField reports one field violation. Return validation.Errors for several.
func InvalidField(field, message string) error {
	errs := validation.Errors{}
	errs.Add(field, message)
	return errs
}

// Internal marks cause as an unexpected failure.
func Internal(cause error) error {
	return &Error{Code: CodeServerError, Cause: cause}
}

// classify maps any error onto the taxonomy. Unrecognized errors become a
// sanitized server_error with the original kept as the cause.
func classify(err error) Result[any] {
	if err == nil {
		return Result[any]{code: CodeServerError, message: msgServerError}
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return Invalid[any](verrs).withCause(err)
	}

	var merr *Error
	if errors.As(err, &merr) && merr.Code.Valid() && !IsSuccess(merr.Code) {
		if merr.Code == CodeServerError {
			return Fail[any](CodeServerError, msgServerError).withCause(err)
		}
		msg := strings.TrimSpace(merr.Message)
		if msg == "" {
			msg = defaultMessage(merr.Code)
		}
		return Fail[any](merr.Code, msg).WithDetails(merr.Details).withCause(err)
	}

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return Fail[any](CodeUnauthorized, defaultMessage(CodeUnauthorized)).withCause(err)
	case errors.Is(err, authz.ErrForbidden):
		return Fail[any](CodeForbidden, defaultMessage(CodeForbidden)).withCause(err)
	case errors.Is(err, ErrNotFound):
		return Fail[any](CodeNotFound, defaultMessage(CodeNotFound)).withCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return Fail[any](CodeServerError, msgTimedOut).withCause(err)
	case errors.Is(err, context.Canceled):
		return Fail[any](CodeServerError, msgCanceled).withCause(err)
	default:
		return Fail[any](CodeServerError, msgServerError).withCause(err)
	}
}

func defaultMessage(code Code) string {
	switch code {
	case CodeValidationError:
		return "validation failed"
	case CodeUnauthorized:
		return "authentication required"
	case CodeForbidden:
		return "insufficient permissions"
	case CodeNotFound:
		return "resource not found"
	default:
		return msgServerError
	}
}

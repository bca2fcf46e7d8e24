package mediator

import (
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

// Code is the closed outcome taxonomy. Every Result carries exactly one.
type Code string

const (
	CodeSuccess         Code = "success"
	CodeValidationError Code = "validation_error"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeServerError     Code = "server_error"
)

// Codes lists every code in the taxonomy.
func Codes() []Code {
	return []Code{CodeSuccess, CodeValidationError, CodeUnauthorized, CodeForbidden, CodeNotFound, CodeServerError}
}

// IsSuccess reports whether code is CodeSuccess.
func IsSuccess(code Code) bool { return code == CodeSuccess }

// Valid reports whether c belongs to the taxonomy.
func (c Code) Valid() bool {
	switch c {
	case CodeSuccess, CodeValidationError, CodeUnauthorized, CodeForbidden, CodeNotFound, CodeServerError:
		return true
	default:
		return false
	}
}

func (c Code) carriesDetails() bool {
	return c == CodeValidationError || c == CodeUnauthorized || c == CodeForbidden
}

const (
	msgServerError = "internal server error"
	msgCanceled    = "request canceled"
	msgTimedOut    = "request timed out"
)

// Result is the single, immutable outcome of a dispatch. Data is present
// only on success; details only on validation and authorization failures.
type Result[T any] struct {
	code          Code
	message       string
	details       validation.Errors
	data          T
	correlationID string
	err           error
}

// Success wraps data in a success Result.
func Success[T any](data T) Result[T] {
	return Result[T]{code: CodeSuccess, data: data}
}

// Fail builds a failed Result. CodeSuccess or an unknown code yields a
// server_error instead, so a failure can never masquerade as success.
func Fail[T any](code Code, message string) Result[T] {
	if !code.Valid() || IsSuccess(code) {
		return Result[T]{code: CodeServerError, message: msgServerError}
	}
	return Result[T]{code: code, message: message}
}

// Invalid builds a validation_error Result holding every violation.
func Invalid[T any](details validation.Errors) Result[T] {
	return Result[T]{code: CodeValidationError, message: "validation failed", details: details.Clone()}
}

// FromError classifies err into the taxonomy. A nil err is a server_error:
// callers must use Success for successful outcomes.
func FromError[T any](err error) Result[T] {
	return Convert[T](classify(err))
}

func (r Result[T]) Code() Code            { return r.code }
func (r Result[T]) Message() string       { return r.message }
func (r Result[T]) CorrelationID() string { return r.correlationID }
func (r Result[T]) OK() bool              { return IsSuccess(r.code) }

// Data returns the payload. It is the zero value unless OK.
func (r Result[T]) Data() T { return r.data }

// Value returns the payload and whether it is present.
func (r Result[T]) Value() (T, bool) { return r.data, r.OK() }

// Details returns a copy of the per-field messages, or nil.
func (r Result[T]) Details() map[string][]string {
	if len(r.details) == 0 {
		return nil
	}
	return r.details.Clone()
}

// Err returns the in-process cause of a failure, such as context.Canceled.
// It is never meant to be shown to end users.
func (r Result[T]) Err() error { return r.err }

// WithDetails returns a copy of r carrying details. Details are dropped for
// codes that do not carry them.
func (r Result[T]) WithDetails(details map[string][]string) Result[T] {
	if !r.code.carriesDetails() || len(details) == 0 {
		return r
	}
	r.details = validation.Errors(details).Clone()
	return r
}

func (r Result[T]) withCause(err error) Result[T] {
	r.err = err
	return r
}

func (r Result[T]) withMessage(msg string) Result[T] {
	r.message = msg
	return r
}

func (r Result[T]) withCorrelation(id string) Result[T] {
	r.correlationID = id
	return r
}

// Convert re-types a coarse Result. Failures keep code, message, details and
// correlation id; a success whose payload is not a T becomes a server_error.
func Convert[T any](r Result[any]) Result[T] {
	out := Result[T]{
		code:          r.code,
		message:       r.message,
		details:       r.details,
		correlationID: r.correlationID,
		err:           r.err,
	}
	if !r.code.Valid() {
		out.code = CodeServerError
		out.message = msgServerError
		return out
	}
	if !r.OK() {
		return out
	}
	if r.data == nil {
		var zero T
		out.data = zero
		return out
	}
	data, ok := r.data.(T)
	if !ok {
		return Result[T]{code: CodeServerError, message: msgServerError, correlationID: r.correlationID}
	}
	out.data = data
	return out
}

// Erase drops the static payload type.
func Erase[T any](r Result[T]) Result[any] {
	out := Result[any]{
		code:          r.code,
		message:       r.message,
		details:       r.details,
		correlationID: r.correlationID,
		err:           r.err,
	}
	if r.OK() {
		out.data = r.data
	}
	return out
}

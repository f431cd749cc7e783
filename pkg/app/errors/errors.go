// Package errors classifies service failures so the REST and JSON-RPC
// surfaces can report them consistently.
package errors

import (
	"errors"
	"net/http"
)

// Category tells the transports how to report an error.
type Category int

const (
	// CategoryNoError is reported for a nil error.
	CategoryNoError Category = iota
	// CategoryDataError is malformed input: bad JSON, an unparsable amount or address.
	CategoryDataError
	// CategoryUnauthorized means the caller could not be authenticated.
	CategoryUnauthorized
	// CategoryResourceNotFound is an unknown transaction hash or route.
	CategoryResourceNotFound
	// CategoryDataConflict is a well formed request the ledger rejects,
	// such as a balance or allowance that is too small.
	CategoryDataConflict
	// CategoryDependencyFailure means the journal database failed.
	CategoryDependencyFailure
	// CategoryGeneralError is anything unexpected.
	CategoryGeneralError
)

var categories = map[Category]struct {
	name   string
	status int
}{
	CategoryNoError:           {"no_error", http.StatusOK},
	CategoryDataError:         {"bad_request", http.StatusBadRequest},
	CategoryUnauthorized:      {"unauthorized", http.StatusUnauthorized},
	CategoryResourceNotFound:  {"not_found", http.StatusNotFound},
	CategoryDataConflict:      {"rejected", http.StatusConflict},
	CategoryDependencyFailure: {"journal_unavailable", http.StatusBadGateway},
	CategoryGeneralError:      {"internal", http.StatusInternalServerError},
}

func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return categories[CategoryGeneralError].name
}

// ServiceError pairs the message shown to clients with the cause, which is
// only logged.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

func (err ServiceError) Unwrap() error {
	return err.Err
}

// StatusCode is the HTTP status the REST API answers with.
func (err ServiceError) StatusCode() int {
	if info, ok := categories[err.Category]; ok && err.Category != CategoryNoError {
		return info.status
	}
	return http.StatusInternalServerError
}

// Is reports whether err wraps a ServiceError of category cat.
func Is(err error, cat Category) bool {
	return err != nil && CategoryOf(err) == cat
}

// CategoryOf returns the category of err. Errors that are not a ServiceError
// count as CategoryGeneralError.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryNoError
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Category
	}
	return CategoryGeneralError
}

// IsInternalError reports whether err is the server's fault rather than the
// caller's.
func IsInternalError(err error) bool {
	return CategoryOf(err) >= CategoryDependencyFailure
}

func newError(cat Category, err error, message string) error {
	if err == nil {
		err = errors.New(message)
	}
	return &ServiceError{Category: cat, Message: message, Err: err}
}

// GeneralError hides err behind "Internal Server Error".
func GeneralError(err error) error {
	return newError(CategoryGeneralError, err, "Internal Server Error")
}

// DependencyError reports a journal failure.
func DependencyError(err error, message string) error {
	return newError(CategoryDependencyFailure, err, message)
}

func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, message)
}

// BadRequestError reports malformed input. message is returned to the client.
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, message)
}

func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, message)
}

// ConflictError reports a ledger rejection. message is the revert reason.
func ConflictError(err error, message string) error {
	return newError(CategoryDataConflict, err, message)
}

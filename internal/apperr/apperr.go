// Package apperr defines the application error hierarchy.  Handlers inspect
// these types with errors.As to pick HTTP status codes: validation failures
// become 400/422, network failures against upstream sites become 502, and
// repository or application failures become 500.  Repository-level sentinels
// (not found, conflict) stay in the repository package.
package apperr

import "fmt"

// ValidationError reports invalid input on a command, query or entity field.
type ValidationError struct {
	Field  string // offending field name, may be empty for whole-object errors
	Reason string // human-readable reason
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ApplicationError wraps a failure inside a command or query handler.  Op
// names the operation that failed (e.g. "show.add").
type ApplicationError struct {
	Op  string
	Err error
}

func (e *ApplicationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *ApplicationError) Unwrap() error { return e.Err }

// Application wraps err as an ApplicationError for op.
func Application(op string, err error) *ApplicationError {
	return &ApplicationError{Op: op, Err: err}
}

// NetworkError reports a failed request to an upstream site (MyAnimeList,
// YouTube).  URL is the request target.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.URL + ": " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// Network wraps err as a NetworkError for url.
func Network(url string, err error) *NetworkError {
	return &NetworkError{URL: url, Err: err}
}

// RepositoryError wraps a storage failure.  Op names the repository method.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string { return "repository: " + e.Op + ": " + e.Err.Error() }
func (e *RepositoryError) Unwrap() error { return e.Err }

// Repository wraps err as a RepositoryError for op.
func Repository(op string, err error) *RepositoryError {
	return &RepositoryError{Op: op, Err: err}
}

// Package apperr defines the error kinds shared by the services and the HTTP
// layer. Callers wrap them with fmt.Errorf("%w: ...") and classify with
// errors.Is.
package apperr

import "fmt"

var (
	// ErrValidation marks bad or duplicate input.
	ErrValidation = fmt.Errorf("validation failed")

	// ErrAuth marks bad credentials or a missing/invalid bearer token.
	ErrAuth = fmt.Errorf("not authorized")

	ErrConflict = fmt.Errorf("already exists")
	ErrNotFound = fmt.Errorf("not found")

	// ErrServer marks unexpected failures in the store, token signing or the
	// external catalog.
	ErrServer = fmt.Errorf("server error")

	// ErrUpstream is the server error raised when the external catalog cannot
	// be reached or refuses the request.
	ErrUpstream = fmt.Errorf("%w: catalog unavailable", ErrServer)
)

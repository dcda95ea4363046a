// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrNotFound signals that the requested row
// does not exist.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// reserved for another role. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration hits the unique email
// constraint on the users table. Handlers should translate this into
// an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

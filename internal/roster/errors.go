package roster

import (
	"errors"

	"github.com/shrimpsizemoose/upprop/internal/store"
)

// Error taxonomy surfaced across the service boundary. Callers match with
// errors.Is and map to transport-level responses.
var (
	ErrUnauthorized  = errors.New("actor may not act on this resource")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalid       = errors.New("invalid input")
	ErrSessionClosed = errors.New("session is closed")
	ErrPersistence   = errors.New("storage failure")

	// ErrDuplicateID re-exports the store sentinel so callers only need this
	// package to classify failures.
	ErrDuplicateID = store.ErrDuplicateID
)

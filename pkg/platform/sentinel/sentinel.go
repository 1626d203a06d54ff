package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: the row or record does not exist
//   - ErrConflict: a write lost an optimistic version check
//   - ErrInvalidState: the record is in the wrong state for the requested write
//   - ErrUnavailable: the backing service cannot be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

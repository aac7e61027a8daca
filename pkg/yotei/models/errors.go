package models

import "errors"

// Error taxonomy shared by all stores. Handlers translate these to HTTP
// status codes; the stores themselves never speak HTTP.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

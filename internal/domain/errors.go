package domain

import "errors"

// Error classes shared by repos, services and the HTTP layer. Callers test
// with errors.Is; the concrete error usually wraps one of these.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrReferentialIntegrity = errors.New("referenced row does not exist")
	ErrValidation           = errors.New("validation failed")
	ErrUpstreamUnavailable  = errors.New("database unavailable")
)

package provider

import "errors"

// Failure categories sources attach to their errors with %w so callers can
// report a failure without exposing vendor response text.
var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
)

package service

import "errors"

// Sentinels the handlers translate into HTTP statuses: not-found errors map
// to 404, ErrRetryConflict to 409. Everything else is a 500/400 concern.
var (
	ErrPostNotFound        = errors.New("post not found")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrNoPublications      = errors.New("post has no publications")
	ErrRetryConflict       = errors.New("publication is not in a retryable state")
	ErrInvalidNetwork      = errors.New("unsupported social network")
)

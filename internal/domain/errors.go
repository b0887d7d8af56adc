package domain

import "errors"

var (
	// ErrEmptyReview rejects analysis of blank input before any inference.
	ErrEmptyReview = errors.New("review text is empty")

	// ErrCapabilityUnavailable means a capability handle could not be
	// constructed. The current request fails; a later request may succeed.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
)

package digest

import "errors"

var (
	// ErrConfiguration means a required setting is missing.
	ErrConfiguration = errors.New("digest: configuration error")

	// ErrInvalidInput means the caller supplied a bad recipient, zone or date.
	ErrInvalidInput = errors.New("digest: invalid input")
)

package schedule

import "errors"

var (
	// ErrUpstreamUnavailable means the provider answered with a non-success
	// status or a body that could not be decoded.
	ErrUpstreamUnavailable = errors.New("schedule: upstream unavailable")

	// ErrNetwork means the request never produced a response.
	ErrNetwork = errors.New("schedule: network error")
)

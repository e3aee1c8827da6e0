package events

import "time"

// HTTPStart is published once the handler has assigned a request ID, before
// the body is read.
type HTTPStart struct {
	Method    string
	Path      string
	RequestID string
}

// HTTPFinish is published after the response is written. Operations counts
// the GraphQL operations the request carried: one for a single request, the
// entry count for a batch, zero when none was parsed.
type HTTPFinish struct {
	Method     string
	Path       string
	RequestID  string
	Status     int
	Operations int
	Duration   time.Duration
}

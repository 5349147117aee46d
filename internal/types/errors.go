package types

import "errors"

var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrInvalidInput    = errors.New("invalid input")

	// ErrUpstream marks a failed call to a third-party API or LLM.
	ErrUpstream = errors.New("upstream service error")
	// ErrUpstreamQuota marks an upstream 429.
	ErrUpstreamQuota = errors.New("upstream quota exceeded")
	// ErrInvalidState marks an OAuth callback whose state does not match the cookie.
	ErrInvalidState = errors.New("invalid oauth state")
)

package client

import "errors"

var (
	// ErrUpstreamTimeout marks a collaborator call that hit its deadline.
	ErrUpstreamTimeout = errors.New("upstream call timed out")
	ErrRemoteFailure   = errors.New("collaborator request failed")
)

package client

import "errors"

var (
	ErrOutOfStock = errors.New("not enough free stock")
	// ErrUpstreamTimeout marks a collaborator call that hit its deadline.
	// Callers must not assume the remote operation did not happen.
	ErrUpstreamTimeout = errors.New("upstream call timed out")
	ErrRemoteFailure   = errors.New("collaborator request failed")
)

package lineupcheck

import "errors"

// Sentinel kinds for check failures.
var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrNoPlayers    = errors.New("service returned no players")
	ErrInconsistent = errors.New("inconsistent responses")
	ErrWrongResult  = errors.New("result does not match local analysis")
	ErrRequest      = errors.New("request failed")
)

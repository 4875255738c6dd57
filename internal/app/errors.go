package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrHistoryDisabled = errors.New("analysis history is disabled")
	ErrInvalidLimit    = errors.New("invalid history limit")
	ErrReloadFailed    = errors.New("snapshot reload failed")
	ErrInvalidSchedule = errors.New("invalid reload schedule")
)

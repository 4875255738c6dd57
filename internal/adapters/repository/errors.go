package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidLimit   = errors.New("invalid history limit")
	ErrRankOutOfRange = errors.New("opponent rank out of range")
	ErrNilSource      = errors.New("nil player source")
	ErrUnknownDriver  = errors.New("unknown sql driver")
)

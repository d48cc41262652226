package entity

import "errors"

// Resolution errors are the only failures surfaced to the caller; every other
// upstream problem degrades to an empty sub-result.
var (
	// ErrInvalidAddress means the input is neither a valid hex address nor an ENS name.
	ErrInvalidAddress = errors.New("invalid wallet address")
	// ErrResolutionFailed means the ENS lookup itself errored or timed out.
	ErrResolutionFailed = errors.New("name resolution failed")
	// ErrNameNotFound means the ENS name has no address record.
	ErrNameNotFound = errors.New("name has no address record")
)

package service

import "errors"

// ErrIndexCorrupt reports an internal inconsistency between the membership
// index and the partition indexes, or an impossible rank/total pair. It
// indicates a bug, not bad input.
var ErrIndexCorrupt = errors.New("ranking index corrupt")

package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrEmptyGameID      = errors.New("empty game id")
	ErrInvalidTimeFrame = errors.New("invalid time frame")
)

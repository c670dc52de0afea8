package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks requests rejected synchronously because of malformed input.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidRange is returned when an interval ends at or before its start.
var ErrInvalidRange = fmt.Errorf("%w: end must be after start", ErrInvalidInput)

// ErrNotFound is returned when a referenced meeting or block does not exist.
var ErrNotFound = errors.New("not found")

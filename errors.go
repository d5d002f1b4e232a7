package floatmap

import "errors"

var (
	ErrInvalidCapacity   = errors.New("capacity must be >= 0")
	ErrCapacityTooLarge  = errors.New("capacity is too large")
	ErrInvalidLoadFactor = errors.New("load factor must be > 0")
)

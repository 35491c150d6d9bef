package types

import "errors"

// ErrInvalidHashLength is returned when a claim hash is not exactly 32 bytes.
var ErrInvalidHashLength = errors.New("types: hash must be 32 bytes")

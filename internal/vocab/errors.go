package vocab

import "errors"

// Validation errors returned by New and Load.
var (
	ErrMissingReserved = errors.New("vocabulary is missing a reserved token")
	ErrNegativeID      = errors.New("vocabulary contains a negative id")
	ErrDuplicateID     = errors.New("vocabulary maps two tokens to the same id")
	ErrNonContiguous   = errors.New("vocabulary ids are not contiguous")
	ErrEmpty           = errors.New("vocabulary is empty")
)

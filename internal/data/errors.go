package data

import "errors"

var ErrMutateDisabled = errors.New("mutation disabled")

package sizing

import "errors"

var (
	ErrInvalidConfig = errors.New("sizing: invalid controller config")
)

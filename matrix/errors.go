package matrix

import "errors"

var (
	ErrIndexOutOfRange = errors.New("matrix: index out of range")
	ErrBadShape        = errors.New("matrix: unexpected shape")
	ErrNonPositive     = errors.New("matrix: non-positive entry not allowed")
)

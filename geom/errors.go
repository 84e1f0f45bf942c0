package geom

import "errors"

var (
	// ErrInvalidArgument is returned for arguments that violate a precondition,
	// such as an equal or non-positive bounding box or a non-canonical rotation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned for negative sizes and scale factors, and for
	// scaled sizes too large to represent.
	ErrOutOfRange = errors.New("out of range")
)

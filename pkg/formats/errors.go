package formats

import "errors"

// Geometry errors. Any of these aborts a conversion run.
var (
	ErrMalformedFace      = errors.New("malformed face")
	ErrMalformedAttribute = errors.New("malformed vertex attribute")
	ErrIndexOutOfRange    = errors.New("face index out of range")
)

// Mesh file errors.
var (
	ErrTruncatedMeshData = errors.New("truncated mesh data")
	ErrTrailingMeshData  = errors.New("trailing data after mesh")
	ErrInvalidMeshCounts = errors.New("invalid mesh counts")
)

// IsMalformed reports whether err is caused by malformed source geometry.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedFace) ||
		errors.Is(err, ErrMalformedAttribute) ||
		errors.Is(err, ErrIndexOutOfRange)
}

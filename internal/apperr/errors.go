package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrInvalidTag      = errors.New("invalid tag")
	ErrMalformedFarm   = errors.New("malformed farm record")
)

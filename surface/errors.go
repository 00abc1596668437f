package surface

import "errors"

// ErrClosed is returned by Show after Close
var ErrClosed = errors.New("surface closed")

package types

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("access to resource denied")
	ErrConflict  = errors.New("resource already exists")
)

// ErrInvalidReference marks a request that points at a row that does not
// exist, e.g. an unknown assignee.
var ErrInvalidReference = errors.New("referenced resource does not exist")

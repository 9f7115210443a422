// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates an unexpected failure that is not a business rule violation.
var ErrInternal = errors.New("internal")

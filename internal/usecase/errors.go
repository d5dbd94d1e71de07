package usecase

import "errors"

// ErrDependencyUnavailable is returned when an upstream is short-circuited.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

package services

import "errors"

// ErrEnrollmentNotFound is the only hard error rollup computation produces.
// Missing pathways, empty pathways, unmet gates and unknown release times are
// all ordinary outcomes encoded in return values.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Sentinels shared by the kv backends and the layers above them. Note that
// the public service APIs never surface these: the storage adapter absorbs
// them into empty-value returns, per the containment contract.
var (
	// ErrNotFound indicates the requested key or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the backing store cannot be reached at all.
	ErrUnavailable = errors.New("storage unavailable")
)

package domain

import "errors"

// ErrConcurrentModification is returned by repositories when a versioned save
// finds that the stored aggregate changed since it was loaded.
var ErrConcurrentModification = errors.New("aggregate was modified concurrently")

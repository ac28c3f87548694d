// Package storage holds the provider-neutral types exchanged with an
// artifact storage backend.
package storage

// Folder is a storage location scoped to one call. ID is the backend's
// internal handle used for uploads, URL the public link shared with the
// callee.
type Folder struct {
	ID  string
	URL string
}

// Package storage defines the docs-tree file-system abstraction.
package storage

import "time"

// Entry describes one candidate document file found on disk. A non-nil Err
// means the path was seen but could not be read; such entries carry no
// checksum.
type Entry struct {
	Path     string // relative to the docs root, forward slashes
	Checksum string // hex SHA-256 of the content
	ModTime  time.Time
	Err      error
}

// Provider is the interface for docs-tree file operations. Paths are always
// relative to the docs root.
type Provider interface {
	// List returns every file with the document extension under the root,
	// sorted lexicographically by path. Per-path read errors are recorded
	// on the entry; only a failure of the root itself returns an error.
	List() ([]Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// Package storage defines the vault file-system abstraction.
package storage

import "github.com/stallerud/ansuz/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every regular file under dir, in
	// enumeration order. When recursive is false only direct children
	// are returned.
	List(dir string, recursive bool) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// ReadPrefix returns at most n leading bytes of the file at path.
	ReadPrefix(path string, n int) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute vault root directory.
	Root() string
}

// Package models defines the domain types for Ansuz.
package models

import "time"

// Node is the graph index's view of a note: a path, a display title, and
// the identifier embedded in the file. ID may be empty for a title-only
// selection candidate that no file backs yet.
type Node struct {
	ID    string `json:"id,omitempty"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// Identified reports whether the node carries a persisted identifier.
func (n Node) Identified() bool { return n.ID != "" }

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reference is an inline link embedding an identifier and a display
// description, connecting a position in one note to another node.
type Reference struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Span marks a half-open byte range [Start, End) within a note's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

package api

import "github.com/stallerud/ansuz/internal/index"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

// IdentifyResponse reports the outcome of an identifier assignment.
type IdentifyResponse struct {
	Path    string `json:"path"`
	ID      string `json:"id,omitempty"`
	Skipped bool   `json:"skipped"`
}

// AuditResponse wraps an audit path listing.
type AuditResponse struct {
	Paths []string `json:"paths"`
	Total int      `json:"total"`
}

// GraphNode is a node in the reference graph (aliased from the index layer).
type GraphNode = index.GraphNode

// GraphLink is an edge in the reference graph (aliased from the index layer).
type GraphLink = index.GraphLink

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

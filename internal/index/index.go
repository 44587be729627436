package index

import "github.com/stallerud/ansuz/internal/models"

// GraphIndex defines the interface for graph-index operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type GraphIndex interface {
	UpsertNode(n NodeRow, body string, refs []string) error
	DeleteNode(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListNodes() ([]models.Node, error)
	NodeByID(id string) (*models.Node, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backrefs(targetID string) ([]string, error)
	Graph() ([]GraphNode, []GraphLink, error)
	Close() error
}

// Verify *DB satisfies GraphIndex at compile time.
var _ GraphIndex = (*DB)(nil)

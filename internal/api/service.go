package api

import (
	"github.com/stallerud/ansuz/internal/bridge"
	"github.com/stallerud/ansuz/internal/checksum"
	"github.com/stallerud/ansuz/internal/index"
	"github.com/stallerud/ansuz/internal/models"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/parser"
	"github.com/stallerud/ansuz/internal/storage"
)

// Service coordinates storage, note store, index, and reconciliation
// operations for the API layer.
type Service struct {
	store  storage.Provider
	engine *notestore.Engine
	db     index.GraphIndex
	bridge *bridge.Service
}

// NewService creates a new API service.
func NewService(store storage.Provider, engine *notestore.Engine, db index.GraphIndex, br *bridge.Service) *Service {
	return &Service{store: store, engine: engine, db: db, bridge: br}
}

// NoteDetail is the response payload for a single note.
type NoteDetail struct {
	Path     string   `json:"path"`
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Checksum string   `json:"checksum"`
	Tags     []string `json:"tags"`
	Backrefs []string `json:"backrefs"`
}

// NodeDetail is the response payload for a single indexed node.
type NodeDetail struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Backrefs []string `json:"backrefs"`
}

// ListNodes returns every indexed node.
func (s *Service) ListNodes() ([]models.Node, error) {
	nodes, err := s.db.ListNodes()
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []models.Node{}
	}
	return nodes, nil
}

// GetNode looks up an indexed node by identifier and enriches it with
// the paths of notes referencing it.
func (s *Service) GetNode(id string) (*NodeDetail, error) {
	n, err := s.db.NodeByID(id)
	if err != nil {
		return nil, err
	}
	br, _ := s.db.Backrefs(id)
	if br == nil {
		br = []string{}
	}
	return &NodeDetail{ID: n.ID, Path: n.Path, Title: n.Title, Backrefs: br}, nil
}

// GetNote reads a note from the vault, parses it, and enriches it with
// backrefs when it carries an identifier.
func (s *Service) GetNote(path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	br := []string{}
	if res.ID != "" {
		if got, err := s.db.Backrefs(res.ID); err == nil && got != nil {
			br = got
		}
	}
	return &NoteDetail{
		Path:     path,
		ID:       res.ID,
		Title:    res.Title,
		Content:  string(data),
		Checksum: checksum.Sum(data),
		Tags:     tags,
		Backrefs: br,
	}, nil
}

// CreateNote materializes a new note from a title and tags. The engine's
// creation hook assigns the identifier; the index picks the note up on
// the next watcher pass, so the returned detail reflects only the file.
func (s *Service) CreateNote(title string, tags []string) (*NoteDetail, error) {
	path, err := s.engine.Create(title, tags)
	if err != nil {
		return nil, err
	}
	return s.GetNote(path)
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph delegates to the index.
func (s *Service) Graph() ([]index.GraphNode, []index.GraphLink, error) {
	return s.db.Graph()
}

// AuditUnlinked reports vault notes missing an identifier block.
func (s *Service) AuditUnlinked(dir string, recursive bool) ([]string, error) {
	paths, err := s.bridge.ScanUnlinked(dir, recursive)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

// AuditLinked reports indexed nodes living under the given directory.
func (s *Service) AuditLinked(dir string) ([]string, error) {
	paths, err := s.bridge.ScanLinked(dir)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

// EnsureIdentifier assigns a fresh identifier to the note at path,
// replacing any block already present. Skipped reports an excluded note.
func (s *Service) EnsureIdentifier(path string) (id string, skipped bool, err error) {
	return s.bridge.EnsureIdentifier(path)
}

// Package bridge implements the identity-and-link reconciliation between
// the filename-encoded note store and the graph index: create-or-link,
// reference composition, and the unlinked audit scan.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/idblock"
	"github.com/stallerud/ansuz/internal/index"
	"github.com/stallerud/ansuz/internal/models"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/storage"
)

// Service coordinates the store, the note engine, the graph index, and
// the interactive prompter. One Service serves a single session; each
// action runs to completion before the next begins.
type Service struct {
	store    storage.Provider
	engine   *notestore.Engine
	db       index.GraphIndex
	prompter Prompter
	logger   *slog.Logger
}

// NewService creates a bridge service.
func NewService(store storage.Provider, engine *notestore.Engine, db index.GraphIndex, prompter Prompter, logger *slog.Logger) *Service {
	return &Service{store: store, engine: engine, db: db, prompter: prompter, logger: logger}
}

// LinkOrCreate resolves a query against the graph index and inserts a
// reference into buf: either to an existing identified node, or to a
// freshly created note whose identifier is read back from the persisted
// file. The mutated buffer is saved before returning. Returns the linked
// identifier.
//
// Cancellation at any prompt returns apperr.ErrCancelled with the buffer
// untouched, except that a note file already materialized stays on disk.
func (s *Service) LinkOrCreate(ctx context.Context, buf *Buffer, queryHint string) (string, error) {
	hint := buf.SelectionText()
	if hint == "" {
		hint = queryHint
	}

	node, err := s.selectNode(ctx, hint)
	if err != nil {
		return "", err
	}

	if !node.Identified() {
		node, err = s.createNode(ctx, node.Title)
		if err != nil {
			return "", err
		}
	}

	// The active selection text takes priority over the node title as
	// the display description.
	desc := buf.SelectionText()
	if desc == "" {
		desc = node.Title
	}
	buf.Insert(models.Reference{ID: node.ID, Description: desc})
	if err := buf.Save(s.store); err != nil {
		return "", err
	}
	s.logger.Debug("linked", slog.String("id", node.ID), slog.String("into", buf.Path))
	return node.ID, nil
}

// FindOrCreate resolves a query against the graph index and returns the
// node to navigate to. On a title-only match it creates the note file
// and returns its location without composing any reference back; where
// the user lands afterwards is the surface's concern.
func (s *Service) FindOrCreate(ctx context.Context, queryHint string) (*models.Node, error) {
	node, err := s.selectNode(ctx, queryHint)
	if err != nil {
		return nil, err
	}
	if node.Identified() {
		return &node, nil
	}

	tags, err := s.prompter.ReadTags(ctx)
	if err != nil {
		return nil, err
	}
	path, err := s.engine.Create(node.Title, tags)
	if err != nil {
		return nil, err
	}
	s.logger.Info("note created", slog.String("path", path))
	return &models.Node{Path: path, Title: node.Title}, nil
}

// EnsureIdentifier repairs or installs the identifier block of an
// existing note. Notes in the excluded category are skipped entirely
// (skipped=true, no error, no mutation) unless configuration opts them
// in. Returns the identifier now carried by the note.
func (s *Service) EnsureIdentifier(path string) (id string, skipped bool, err error) {
	if parts, ok := notestore.ParseFilename(path); ok && s.engine.Excluded(parts.Tags) {
		return "", true, nil
	}
	id, err = idblock.Ensure(s.store, path, s.engine.Format(), s.engine.NewID)
	return id, false, err
}

// selectNode runs the interactive selection step against the live node
// list. Cancellation propagates as apperr.ErrCancelled.
func (s *Service) selectNode(ctx context.Context, hint string) (models.Node, error) {
	candidates, err := s.db.ListNodes()
	if err != nil {
		return models.Node{}, err
	}
	return s.prompter.ChooseNode(ctx, hint, candidates)
}

// createNode materializes a new note for title, then re-reads the
// persisted file and extracts its identifier. A missing block means the
// creation hook did not run the identifier manager: a consistency
// violation surfaced as apperr.ErrMissingIdentifier with the offending
// path, never silently recovered. The file stays on disk for inspection.
func (s *Service) createNode(ctx context.Context, title string) (models.Node, error) {
	tags, err := s.prompter.ReadTags(ctx)
	if err != nil {
		return models.Node{}, err
	}

	path, err := s.engine.Create(title, tags)
	if err != nil {
		return models.Node{}, err
	}

	// Read the persisted text back rather than trusting any in-memory
	// view of the freshly created file.
	data, err := s.store.Read(path)
	if err != nil {
		return models.Node{}, err
	}
	id, ok := idblock.Extract(string(data))
	if !ok {
		return models.Node{}, fmt.Errorf("bridge: note %s: %w", path, apperr.ErrMissingIdentifier)
	}
	s.logger.Info("note created", slog.String("path", path), slog.String("id", id))
	return models.Node{ID: id, Path: path, Title: title}, nil
}

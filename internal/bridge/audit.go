package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/idblock"
)

// auditPrefixBytes bounds how much of each candidate the unlinked scan
// reads. The identifier block sits at offset 0, so the first few hundred
// bytes decide the question.
const auditPrefixBytes = 512

// ScanUnlinked walks the note files under root (a directory relative to
// the vault root; empty for the whole vault) and returns, in enumeration
// order, every note whose content does not begin with an identifier
// block. These are the notes invisible to the graph index. The scan is
// read-only.
func (s *Service) ScanUnlinked(root string, recursive bool) ([]string, error) {
	metas, err := s.store.List(root, recursive)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range metas {
		if !s.engine.Classify(m.Path) {
			continue
		}
		prefix, err := s.store.ReadPrefix(m.Path, auditPrefixBytes)
		if err != nil {
			return nil, err
		}
		if !idblock.StartsWithBlock(prefix) {
			out = append(out, m.Path)
		}
	}
	return out, nil
}

// ScanLinked asks the graph index for its live node list and returns the
// vault-relative paths of every node whose backing file lies under root,
// in index order. True paths are resolved before the containment test so
// symlinked roots compare correctly. This is the complement of
// ScanUnlinked: what the index already knows about.
func (s *Service) ScanLinked(root string) ([]string, error) {
	base := filepath.Join(s.store.Root(), filepath.FromSlash(root))
	resolved, err := filepath.EvalSymlinks(base)
	if err != nil {
		return nil, fmt.Errorf("bridge: scan root %s: %w", root, apperr.ErrDirectoryNotFound)
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("bridge: scan root %s: %w", root, apperr.ErrDirectoryNotFound)
	}

	nodes, err := s.db.ListNodes()
	if err != nil {
		return nil, err
	}

	var out []string
	for _, n := range nodes {
		abs := filepath.Join(s.store.Root(), filepath.FromSlash(n.Path))
		if r, err := filepath.EvalSymlinks(abs); err == nil {
			abs = r
		}
		if abs == resolved || strings.HasPrefix(abs, resolved+string(os.PathSeparator)) {
			out = append(out, n.Path)
		}
	}
	return out, nil
}

package index

import (
	"errors"
	"log/slog"
	"time"

	"github.com/stallerud/ansuz/internal/checksum"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/parser"
	"github.com/stallerud/ansuz/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed note files carrying an identifier block are parsed
//     and upserted
//   - note files without an identifier block stay out of the index
//     (they are what the unlinked audit reports)
//   - entries whose files are gone from disk are deleted
func Sync(db *DB, store storage.Provider, engine *notestore.Engine, logger *slog.Logger) error {
	metas, err := store.List("", true)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if !engine.Classify(m.Path) {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		switch err := indexFile(db, m.Path, data); {
		case errors.Is(err, errUnlinked):
			// An unlinked note may previously have carried an id.
			delete(disk, m.Path)
			logger.Debug("sync: unlinked, skipped", slog.String("path", m.Path))
		case err != nil:
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		default:
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNode(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// errUnlinked marks a note without an identifier block. It never leaves
// this package.
var errUnlinked = errors.New("note has no identifier block")

// indexFile parses data and upserts it into the DB. Notes without an
// identifier block yield errUnlinked and are not indexed.
func indexFile(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	if res.ID == "" {
		return errUnlinked
	}

	title := res.Title
	if title == "" {
		if parts, ok := notestore.ParseFilename(path); ok {
			title = parts.Title
		}
	}

	return db.UpsertNode(NodeRow{
		Path:      path,
		ID:        res.ID,
		Title:     title,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}, res.Body, res.Refs)
}

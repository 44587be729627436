package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/models"
)

// NodeRow represents a row in the nodes table.
type NodeRow struct {
	Path      string
	ID        string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one node search hit.
type SearchResult struct {
	Path    string
	ID      string
	Title   string
	Snippet string
}

// UpsertNode inserts or replaces a node, its FTS entry, and its outgoing
// refs within a transaction.
func (db *DB) UpsertNode(n NodeRow, body string, refs []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO nodes (path, id, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id         = excluded.id,
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, n.Path, n.ID, n.Title, n.Checksum, body, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert node: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, n.Path, n.Title, body); err != nil {
		return err
	}

	// Replace refs: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, n.Path)
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO refs (source, target_id) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range refs {
			if _, err := stmt.Exec(n.Path, target); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNode removes a node, its FTS entry, and its outgoing refs.
func (db *DB) DeleteNode(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM refs WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM nodes WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a node, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM nodes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not indexed is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed node.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListNodes returns every indexed node in row order.
func (db *DB) ListNodes() ([]models.Node, error) {
	rows, err := db.conn.Query(`SELECT path, id, title FROM nodes`)
	if err != nil {
		return nil, fmt.Errorf("index: list nodes: %w", err)
	}
	defer rows.Close()

	var out []models.Node
	for rows.Next() {
		var n models.Node
		if err := rows.Scan(&n.Path, &n.ID, &n.Title); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NodeByID returns the node carrying the given identifier.
func (db *DB) NodeByID(id string) (*models.Node, error) {
	var n models.Node
	err := db.conn.QueryRow(`SELECT path, id, title FROM nodes WHERE id = ?`, id).Scan(&n.Path, &n.ID, &n.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: node %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: node by id: %w", err)
	}
	return &n, nil
}

// GraphNode is a node in the reference graph.
type GraphNode struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// GraphLink is a directed reference edge. Source is a node path, Target
// the identifier the reference points at.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph returns every indexed node and every reference edge.
func (db *DB) Graph() ([]GraphNode, []GraphLink, error) {
	rows, err := db.conn.Query(`SELECT path, id, title FROM nodes`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	var nodes []GraphNode
	for rows.Next() {
		var n GraphNode
		if err := rows.Scan(&n.Path, &n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	refRows, err := db.conn.Query(`SELECT source, target_id FROM refs`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph refs: %w", err)
	}
	defer refRows.Close()

	var links []GraphLink
	for refRows.Next() {
		var l GraphLink
		if err := refRows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, err
		}
		links = append(links, l)
	}
	return nodes, links, refRows.Err()
}

// Backrefs returns the paths of every node that references targetID.
func (db *DB) Backrefs(targetID string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM refs WHERE target_id = ?`, targetID)
	if err != nil {
		return nil, fmt.Errorf("index: backrefs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

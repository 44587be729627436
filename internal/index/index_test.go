package index

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/idblock"
	"github.com/stallerud/ansuz/internal/notestore"
	"github.com/stallerud/ansuz/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM nodes`).Scan(&count); err != nil {
		t.Fatalf("nodes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM refs`).Scan(&count); err != nil {
		t.Fatalf("refs table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := NodeRow{
		Path:      "20240101T090000--hello.org",
		ID:        "node-hello",
		Title:     "Hello World",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertNode(row, "This is a hello world note.", []string{"node-other"}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	cs, err := db.GetChecksum(row.Path)
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestNodeByID(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "a.org", ID: "id-a", Title: "A", Checksum: "1", UpdatedAt: time.Now()}, "body", nil)

	n, err := db.NodeByID("id-a")
	if err != nil {
		t.Fatalf("NodeByID: %v", err)
	}
	if n.Path != "a.org" || n.Title != "A" {
		t.Errorf("node = %+v", n)
	}

	if _, err := db.NodeByID("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBackrefs(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "a.org", ID: "id-a", Checksum: "1", UpdatedAt: time.Now()}, "body", []string{"id-b"})
	_ = db.UpsertNode(NodeRow{Path: "c.org", ID: "id-c", Checksum: "2", UpdatedAt: time.Now()}, "body", []string{"id-b"})

	bl, err := db.Backrefs("id-b")
	if err != nil {
		t.Fatalf("Backrefs: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backrefs, got %d", len(bl))
	}
}

func TestDeleteNode(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "del.org", ID: "id-del", Checksum: "x", UpdatedAt: time.Now()}, "body", []string{"id-target"})

	if err := db.DeleteNode("del.org"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	cs, _ := db.GetChecksum("del.org")
	if cs != "" {
		t.Errorf("deleted node still has checksum %q", cs)
	}
	bl, _ := db.Backrefs("id-target")
	if len(bl) != 0 {
		t.Errorf("expected 0 backrefs after delete, got %d", len(bl))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNode(NodeRow{Path: "up.org", ID: "id-up", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body", []string{"id-x"})
	_ = db.UpsertNode(NodeRow{Path: "up.org", ID: "id-up", Title: "New", Checksum: "2", UpdatedAt: now}, "new body", []string{"id-y"})

	cs, _ := db.GetChecksum("up.org")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backrefs("id-x")
	if len(bl) != 0 {
		t.Error("old ref should be removed on upsert")
	}
	bl, _ = db.Backrefs("id-y")
	if len(bl) != 1 {
		t.Error("new ref should exist")
	}
}

func TestListNodes(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "a.org", ID: "id-a", Title: "A", Checksum: "1", UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertNode(NodeRow{Path: "b.org", ID: "id-b", Title: "B", Checksum: "2", UpdatedAt: time.Now()}, "", nil)

	nodes, err := db.ListNodes()
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2", len(nodes))
	}
	if !nodes[0].Identified() {
		t.Error("indexed nodes must carry identifiers")
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "a.org", ID: "id-a", Title: "A", Checksum: "1", UpdatedAt: time.Now()}, "", []string{"id-b"})
	_ = db.UpsertNode(NodeRow{Path: "b.org", ID: "id-b", Title: "B", Checksum: "2", UpdatedAt: time.Now()}, "", nil)

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(nodes))
	}
	if len(links) != 1 || links[0].Source != "a.org" || links[0].Target != "id-b" {
		t.Errorf("links = %+v", links)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNode(NodeRow{Path: "s.org", ID: "id-s", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.org" || results[0].ID != "id-s" {
		t.Errorf("search results = %+v, want 1 hit for s.org", results)
	}
}

func writeNote(t *testing.T, store storage.Provider, path, content string) {
	t.Helper()
	if err := store.Write(path, []byte(content)); err != nil {
		t.Fatalf("Write %s: %v", path, err)
	}
}

func TestSync_IndexesOnlyLinkedNotes(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := notestore.New(store, notestore.Options{})
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	writeNote(t, store, "20240101T090000--linked.org", idblock.Render("id-linked")+"#+title: Linked\nbody\n")
	writeNote(t, store, "20240101T090100--loose.org", "#+title: Loose\nno block\n")
	writeNote(t, store, "notes.txt", "not a note\n")

	if err := Sync(db, store, engine, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	nodes, _ := db.ListNodes()
	if len(nodes) != 1 {
		t.Fatalf("indexed %d nodes, want 1", len(nodes))
	}
	if nodes[0].ID != "id-linked" || nodes[0].Title != "Linked" {
		t.Errorf("node = %+v", nodes[0])
	}
}

func TestSync_RemovesStaleEntries(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := notestore.New(store, notestore.Options{})
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	writeNote(t, store, "20240101T090000--gone.org", idblock.Render("id-gone")+"#+title: Gone\n")
	if err := Sync(db, store, engine, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := store.Delete("20240101T090000--gone.org"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := Sync(db, store, engine, logger); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	nodes, _ := db.ListNodes()
	if len(nodes) != 0 {
		t.Errorf("stale node survived sync: %+v", nodes)
	}
}

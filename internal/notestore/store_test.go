package notestore

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stallerud/ansuz/internal/idblock"
	"github.com/stallerud/ansuz/internal/storage"
)

func testEngine(t *testing.T, opts Options) (*Engine, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if opts.Now == nil {
		opts.Now = func() time.Time {
			return time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
		}
	}
	if opts.NewID == nil {
		n := 0
		opts.NewID = func() string { n++; return fmt.Sprintf("test-id-%d", n) }
	}
	return New(store, opts), store
}

func TestCreate_FilenameEncoding(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	path, err := eng.Create("My Great Note", []string{"work", "ideas"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := "20240315T103000--my-great-note__work_ideas.org"
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestCreate_RunsIdentifierHook(t *testing.T) {
	eng, store := testEngine(t, Options{})
	path, err := eng.Create("Linked", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	id, ok := idblock.Extract(string(data))
	if !ok {
		t.Fatalf("created note has no identifier block: %q", data)
	}
	if id != "test-id-1" {
		t.Errorf("id = %q", id)
	}
	if !strings.Contains(string(data), "#+title: Linked\n") {
		t.Errorf("front matter missing title: %q", data)
	}
}

func TestCreate_ExcludedTagSkipsHook(t *testing.T) {
	eng, store := testEngine(t, Options{ExcludedTag: "journal"})
	path, err := eng.Create("Morning Pages", []string{"journal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, _ := store.Read(path)
	if idblock.StartsWithBlock(data) {
		t.Errorf("excluded note received an identifier block: %q", data)
	}
}

func TestCreate_ExcludedOptIn(t *testing.T) {
	eng, store := testEngine(t, Options{ExcludedTag: "journal", IdentifyExcluded: true})
	path, err := eng.Create("Morning Pages", []string{"journal"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, _ := store.Read(path)
	if !idblock.StartsWithBlock(data) {
		t.Error("opted-in excluded note should carry an identifier block")
	}
}

func TestCreate_EmptyTitle(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	if _, err := eng.Create("   ", nil); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestClassify(t *testing.T) {
	eng, _ := testEngine(t, Options{})
	cases := []struct {
		path string
		want bool
	}{
		{"20240315T103000--hello.org", true},
		{"sub/20240315T103000--hello__a_b.org", true},
		{"20240315T103000--hello.md", false}, // wrong extension for org store
		{"random.org", false},                // outside the filename scheme
		{"readme.txt", false},
	}
	for _, tc := range cases {
		if got := eng.Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestParseFilename(t *testing.T) {
	parts, ok := ParseFilename("20240315T103000--my-great-note__work_ideas.org")
	if !ok {
		t.Fatal("expected match")
	}
	if parts.Title != "my great note" {
		t.Errorf("title = %q", parts.Title)
	}
	if len(parts.Tags) != 2 || parts.Tags[0] != "work" || parts.Tags[1] != "ideas" {
		t.Errorf("tags = %v", parts.Tags)
	}
	if parts.Timestamp.Year() != 2024 || parts.Timestamp.Month() != 3 {
		t.Errorf("timestamp = %v", parts.Timestamp)
	}

	if _, ok := ParseFilename("not-a-note.org"); ok {
		t.Error("expected no match for name outside the scheme")
	}
}

package idblock

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/storage"
)

func tempStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func sequentialGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%04d", n)
	}
}

func TestRenderExtractRoundTrip(t *testing.T) {
	text := Render("abc-123") + "#+title: Hello\n"
	id, ok := Extract(text)
	if !ok || id != "abc-123" {
		t.Errorf("Extract = %q, %v; want abc-123, true", id, ok)
	}
}

func TestExtract_NoBlock(t *testing.T) {
	cases := []string{
		"",
		"#+title: Hello\n",
		"some text\n" + Render("late-block"), // block not at offset 0
		":ID: floating-id\n",
	}
	for _, text := range cases {
		if id, ok := Extract(text); ok {
			t.Errorf("Extract(%q) = %q, want no match", text, id)
		}
	}
}

func TestStrip_RemovesWholeBlock(t *testing.T) {
	body := "#+title: Hello\nBody text.\n"
	got := Strip(Render("x") + body)
	if got != body {
		t.Errorf("Strip = %q, want %q", got, body)
	}
}

func TestStrip_NoBlockUnchanged(t *testing.T) {
	body := "plain note\nwith lines\n"
	if got := Strip(body); got != body {
		t.Errorf("Strip = %q, want unchanged", got)
	}
}

func TestStrip_MissingTerminator(t *testing.T) {
	text := ":PROPERTIES:\n#+title: Hello\n"
	got := Strip(text)
	if got != "#+title: Hello\n" {
		t.Errorf("Strip = %q", got)
	}
}

func TestEnsure_FreshNote(t *testing.T) {
	store := tempStore(t)
	if err := store.Write("a.org", []byte("#+title: A\nBody.\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	id, err := Ensure(store, "a.org", FormatOrg, sequentialGen())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	data, _ := store.Read("a.org")
	want := Render(id) + "#+title: A\nBody.\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestEnsure_EmptyFile(t *testing.T) {
	store := tempStore(t)
	_ = store.Write("empty.org", nil)
	id, err := Ensure(store, "empty.org", FormatOrg, sequentialGen())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	data, _ := store.Read("empty.org")
	if string(data) != Render(id) {
		t.Errorf("file = %q", data)
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	store := tempStore(t)
	gen := sequentialGen()
	_ = store.Write("n.org", []byte("#+title: N\n"))

	first, err := Ensure(store, "n.org", FormatOrg, gen)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := Ensure(store, "n.org", FormatOrg, gen)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if first == second {
		t.Error("each application must assign a fresh identifier")
	}

	data, _ := store.Read("n.org")
	text := string(data)
	if !strings.HasPrefix(text, ":PROPERTIES:\n") {
		t.Errorf("block not at offset 0: %q", text)
	}
	if n := strings.Count(text, ":PROPERTIES:"); n != 1 {
		t.Errorf("found %d opening markers, want exactly 1", n)
	}
	got, ok := Extract(text)
	if !ok || got != second {
		t.Errorf("Extract = %q, %v; want %q", got, ok, second)
	}
	if !strings.HasSuffix(text, "#+title: N\n") {
		t.Errorf("body lost: %q", text)
	}
}

func TestEnsure_RepairsDuplicatedBlocks(t *testing.T) {
	store := tempStore(t)
	// Three stacked blocks: a single application strips them all before
	// writing the fresh one.
	_ = store.Write("d.org", []byte(Render("old-1")+Render("old-2")+Render("old-3")+"body\n"))
	id, err := Ensure(store, "d.org", FormatOrg, sequentialGen())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	data, _ := store.Read("d.org")
	want := Render(id) + "body\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestStrip_StackedBlocks(t *testing.T) {
	body := "#+title: D\nbody\n"
	got := Strip(Render("a") + Render("b") + body)
	if got != body {
		t.Errorf("Strip = %q, want %q", got, body)
	}
}

func TestEnsure_UnsupportedFormat(t *testing.T) {
	store := tempStore(t)
	_ = store.Write("m.md", []byte("# Hello\n"))
	for _, format := range []string{FormatMarkdown, FormatPlain, "docx"} {
		_, err := Ensure(store, "m.md", format, sequentialGen())
		if !errors.Is(err, apperr.ErrUnsupportedFormat) {
			t.Errorf("format %q: err = %v, want ErrUnsupportedFormat", format, err)
		}
	}
	// No mutation on the failure path.
	data, _ := store.Read("m.md")
	if string(data) != "# Hello\n" {
		t.Errorf("file mutated on unsupported format: %q", data)
	}
}

package bridge

import (
	"strings"
	"testing"

	"github.com/stallerud/ansuz/internal/models"
)

func TestComposeReference(t *testing.T) {
	got := ComposeReference(models.Reference{ID: "abc", Description: "My Note"})
	if got != "[[id:abc][My Note]]" {
		t.Errorf("ComposeReference = %q", got)
	}
}

func TestInsert_ReplacesSelection(t *testing.T) {
	b := &Buffer{
		Text:      "see foo here",
		Selection: &models.Span{Start: 4, End: 7}, // "foo"
	}
	b.Insert(models.Reference{ID: "x1", Description: "bar"})

	if strings.Contains(b.Text, "foo") {
		t.Errorf("selected text must be discarded, got %q", b.Text)
	}
	want := "see [[id:x1][bar]] here"
	if b.Text != want {
		t.Errorf("text = %q, want %q", b.Text, want)
	}
	if b.Selection != nil {
		t.Error("selection should be consumed")
	}
}

func TestInsert_AtCursor(t *testing.T) {
	b := &Buffer{Text: "before after", Cursor: 7}
	b.Insert(models.Reference{ID: "x2", Description: "mid"})

	want := "before [[id:x2][mid]]after"
	if b.Text != want {
		t.Errorf("text = %q, want %q", b.Text, want)
	}
	// Surrounding text byte-identical except for the insertion.
	if !strings.HasPrefix(b.Text, "before ") || !strings.HasSuffix(b.Text, "after") {
		t.Errorf("surrounding text altered: %q", b.Text)
	}
}

func TestInsert_CursorClamped(t *testing.T) {
	b := &Buffer{Text: "short", Cursor: 99}
	b.Insert(models.Reference{ID: "x3", Description: "end"})
	if !strings.HasSuffix(b.Text, "[[id:x3][end]]") {
		t.Errorf("text = %q", b.Text)
	}

	b = &Buffer{Text: "short", Cursor: -5}
	b.Insert(models.Reference{ID: "x4", Description: "start"})
	if !strings.HasPrefix(b.Text, "[[id:x4][start]]") {
		t.Errorf("text = %q", b.Text)
	}
}

func TestSelectionText(t *testing.T) {
	b := &Buffer{Text: "hello world", Selection: &models.Span{Start: 6, End: 11}}
	if got := b.SelectionText(); got != "world" {
		t.Errorf("SelectionText = %q", got)
	}
	b.Selection = nil
	if got := b.SelectionText(); got != "" {
		t.Errorf("SelectionText = %q, want empty", got)
	}
}

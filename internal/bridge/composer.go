package bridge

import (
	"github.com/stallerud/ansuz/internal/models"
	"github.com/stallerud/ansuz/internal/storage"
)

// ComposeReference renders the inline reference text for an identifier
// and a display description. Pure text construction: it never consults
// the store or the index.
func ComposeReference(ref models.Reference) string {
	return "[[id:" + ref.ID + "][" + ref.Description + "]]"
}

// Buffer is the explicit read-transform-write form of an editing buffer:
// the whole note text plus a cursor position and an optional selection.
type Buffer struct {
	Path      string
	Text      string
	Cursor    int
	Selection *models.Span
}

// LoadBuffer reads the note at path into a Buffer with the cursor at the
// end of the text.
func LoadBuffer(store storage.Provider, path string) (*Buffer, error) {
	data, err := store.Read(path)
	if err != nil {
		return nil, err
	}
	return &Buffer{Path: path, Text: string(data), Cursor: len(data)}, nil
}

// SelectionText returns the currently selected text, or empty when no
// selection is active.
func (b *Buffer) SelectionText() string {
	if b.Selection == nil {
		return ""
	}
	s := b.clampSpan(*b.Selection)
	return b.Text[s.Start:s.End]
}

// Insert places the rendered reference into the buffer. An active
// selection is replaced in full; otherwise the reference is inserted at
// the cursor without altering surrounding text. The cursor lands after
// the inserted reference and the selection is consumed.
func (b *Buffer) Insert(ref models.Reference) {
	text := ComposeReference(ref)
	if b.Selection != nil {
		s := b.clampSpan(*b.Selection)
		b.Text = b.Text[:s.Start] + text + b.Text[s.End:]
		b.Cursor = s.Start + len(text)
		b.Selection = nil
		return
	}
	at := b.Cursor
	if at < 0 {
		at = 0
	}
	if at > len(b.Text) {
		at = len(b.Text)
	}
	b.Text = b.Text[:at] + text + b.Text[at:]
	b.Cursor = at + len(text)
}

// Save persists the buffer back to the store.
func (b *Buffer) Save(store storage.Provider) error {
	return store.Write(b.Path, []byte(b.Text))
}

func (b *Buffer) clampSpan(s models.Span) models.Span {
	if s.Start < 0 {
		s.Start = 0
	}
	if s.End > len(b.Text) {
		s.End = len(b.Text)
	}
	if s.End < s.Start {
		s.End = s.Start
	}
	return s
}

// Package idblock owns the identifier block convention: a property drawer
// at the very top of a note carrying exactly one globally unique
// identifier. A note is addressable by the graph index only when this
// block is present at offset 0.
package idblock

import (
	"fmt"
	"strings"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/storage"
)

// Store formats. Identifier blocks are defined only for the org dialect;
// ensuring an identifier under any other configured format fails with
// apperr.ErrUnsupportedFormat before touching the file.
const (
	FormatOrg      = "org"
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

const (
	openMarker  = ":PROPERTIES:"
	idKeyword   = ":ID:"
	closeMarker = ":END:"
)

// Supported reports whether the given store format can carry an
// identifier block.
func Supported(format string) bool { return format == FormatOrg }

// Render returns a well-formed identifier block for id, including the
// trailing newline that separates it from the note body.
func Render(id string) string {
	return openMarker + "\n" + idKeyword + " " + id + "\n" + closeMarker + "\n"
}

// StartsWithBlock reports whether data begins with the block opening
// marker on its own line. It only needs the first few bytes of a note,
// which is what the audit scan feeds it.
func StartsWithBlock(data []byte) bool {
	s := string(data)
	return strings.HasPrefix(s, openMarker+"\n") || s == openMarker
}

// Extract returns the identifier from a block at offset 0, if any.
// Blocks elsewhere in the text are not considered: a note whose block has
// drifted from the top is not linked.
func Extract(text string) (string, bool) {
	if !StartsWithBlock([]byte(text)) {
		return "", false
	}
	for _, line := range strings.Split(text, "\n") {
		if line == closeMarker {
			break
		}
		if rest, ok := strings.CutPrefix(line, idKeyword); ok {
			if id := strings.TrimSpace(rest); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

// Strip removes all consecutive identifier blocks at offset 0,
// terminating markers included. Text without a block at the top is
// returned unchanged. A block missing its terminator loses only the
// opening line, so malformed input never costs note body.
func Strip(text string) string {
	for StartsWithBlock([]byte(text)) {
		text = stripOne(text)
	}
	return text
}

func stripOne(text string) string {
	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\n") == closeMarker {
			return strings.Join(lines[i+1:], "")
		}
	}
	return strings.Join(lines[1:], "")
}

// Ensure guarantees the note at path carries exactly one well-formed
// identifier block at offset 0 holding a fresh identifier from gen, and
// persists the result. Any pre-existing block is discarded first, which
// makes the operation idempotent and repairs malformed or duplicated
// blocks. Returns the identifier written.
func Ensure(store storage.Provider, path, format string, gen func() string) (string, error) {
	if !Supported(format) {
		return "", fmt.Errorf("idblock: format %q: %w", format, apperr.ErrUnsupportedFormat)
	}
	data, err := store.Read(path)
	if err != nil {
		return "", err
	}
	id := gen()
	text := Render(id) + Strip(string(data))
	if err := store.Write(path, []byte(text)); err != nil {
		return "", err
	}
	return id, nil
}

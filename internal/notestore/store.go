// Package notestore implements the filename-encoded note store: it
// materializes new note files from a title and tags, recognizes which
// vault files are notes, and decodes titles and tags back out of
// filenames.
package notestore

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/stallerud/ansuz/internal/idblock"
	"github.com/stallerud/ansuz/internal/storage"
)

// filenameRe matches the note filename scheme:
// <timestamp>--<title-slug>[__<tag>_<tag>...].<ext>
var filenameRe = regexp.MustCompile(`^(\d{8}T\d{6})--([^_.]+(?:-[^_.]+)*)(?:__([a-z0-9_-]+))?\.(\w+)$`)

const timestampLayout = "20060102T150405"

// Options configures an Engine.
type Options struct {
	// Format is the note dialect the store is configured for
	// (idblock.FormatOrg, FormatMarkdown, or FormatPlain).
	Format string
	// ExcludedTag names the note category that is skipped by identifier
	// assignment (e.g. ephemeral journal notes).
	ExcludedTag string
	// IdentifyExcluded opts the excluded category back in.
	IdentifyExcluded bool
	// NewID generates identifiers. Defaults to uuid.NewString.
	NewID func() string
	// Now supplies creation timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Engine creates and classifies note files in a vault.
type Engine struct {
	store storage.Provider
	opts  Options
}

// New creates an Engine over the given vault store.
func New(store storage.Provider, opts Options) *Engine {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Format == "" {
		opts.Format = idblock.FormatOrg
	}
	return &Engine{store: store, opts: opts}
}

// Format returns the dialect the store is configured for.
func (e *Engine) Format() string { return e.opts.Format }

// NewID returns a fresh identifier from the store's generator.
func (e *Engine) NewID() string { return e.opts.NewID() }

// Ext returns the file extension for the configured format, dot included.
func (e *Engine) Ext() string {
	switch e.opts.Format {
	case idblock.FormatMarkdown:
		return ".md"
	case idblock.FormatPlain:
		return ".txt"
	default:
		return ".org"
	}
}

// Excluded reports whether a note with the given tags belongs to the
// excluded category and should be skipped by identifier assignment.
func (e *Engine) Excluded(tags []string) bool {
	if e.opts.ExcludedTag == "" || e.opts.IdentifyExcluded {
		return false
	}
	for _, t := range tags {
		if t == e.opts.ExcludedTag {
			return true
		}
	}
	return false
}

// Create materializes a new note file from a title and tags and returns
// its path relative to the vault root. The filename encodes the creation
// timestamp, slugged title, and tags. As its creation hook it ensures the
// new file carries an identifier block, unless the note is excluded.
func (e *Engine) Create(title string, tags []string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("notestore: title is required")
	}

	now := e.opts.Now()
	name := now.Format(timestampLayout) + "--" + slug.Make(title)
	if len(tags) > 0 {
		name += "__" + strings.Join(tags, "_")
	}
	name += e.Ext()

	content := e.frontMatter(title, tags, now)
	if err := e.store.Write(name, []byte(content)); err != nil {
		return "", err
	}

	if !e.Excluded(tags) {
		if _, err := idblock.Ensure(e.store, name, e.opts.Format, e.opts.NewID); err != nil {
			// The file stays on disk; the caller surfaces the broken hook.
			return name, err
		}
	}
	return name, nil
}

// frontMatter renders the keyword header for a new note.
func (e *Engine) frontMatter(title string, tags []string, now time.Time) string {
	var b strings.Builder
	switch e.opts.Format {
	case idblock.FormatMarkdown:
		b.WriteString("# " + title + "\n")
	case idblock.FormatPlain:
		b.WriteString(title + "\n")
	default:
		b.WriteString("#+title: " + title + "\n")
		b.WriteString("#+date: [" + now.Format("2006-01-02 Mon 15:04") + "]\n")
		if len(tags) > 0 {
			b.WriteString("#+filetags: :" + strings.Join(tags, ":") + ":\n")
		}
		b.WriteString("#+identifier: " + now.Format(timestampLayout) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Classify reports whether the vault file at relPath is a note this
// store recognizes: the filename scheme plus the configured extension.
func (e *Engine) Classify(relPath string) bool {
	name := path.Base(relPath)
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	return "."+m[4] == e.Ext()
}

// FileParts is the decoded form of an encoded note filename.
type FileParts struct {
	Timestamp time.Time
	Title     string // slug with hyphens replaced by spaces
	Tags      []string
}

// ParseFilename decodes the timestamp, title, and tags encoded in a note
// filename. Returns false for names outside the scheme.
func ParseFilename(name string) (FileParts, bool) {
	m := filenameRe.FindStringSubmatch(path.Base(name))
	if m == nil {
		return FileParts{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return FileParts{}, false
	}
	parts := FileParts{
		Timestamp: ts,
		Title:     strings.ReplaceAll(m[2], "-", " "),
	}
	if m[3] != "" {
		parts.Tags = strings.Split(m[3], "_")
	}
	return parts, true
}

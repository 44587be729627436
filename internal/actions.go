package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/bridge"
	"github.com/stallerud/ansuz/internal/mcpserver"
	"github.com/stallerud/ansuz/internal/models"
	"github.com/stallerud/ansuz/internal/prompt"
)

// LinkParams carries the buffer coordinates for a link action.
type LinkParams struct {
	Path     string // note to edit, relative to the vault root
	Cursor   int    // insertion point; negative means end of text
	SelStart int    // selection start, or -1 for no selection
	SelEnd   int    // selection end
	Hint     string // query hint when nothing is selected
}

// RunLink inserts a reference into a note, creating the target when the
// query resolves to no existing node. Interactive prompts run over in/out.
func RunLink(ctx context.Context, cfg *Config, p LinkParams, in io.Reader, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Fresh candidates before prompting.
	if err := rt.Sync(); err != nil {
		return err
	}

	svc := rt.Bridge(prompt.NewTerminal(in, out))

	buf, err := bridge.LoadBuffer(rt.Store, p.Path)
	if err != nil {
		return err
	}
	if p.Cursor >= 0 {
		buf.Cursor = p.Cursor
	}
	if p.SelStart >= 0 && p.SelEnd >= p.SelStart {
		buf.Selection = &models.Span{Start: p.SelStart, End: p.SelEnd}
	}

	id, err := svc.LinkOrCreate(ctx, buf, p.Hint)
	if errors.Is(err, apperr.ErrCancelled) {
		fmt.Fprintln(out, "cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	// Pick up the new reference, and the new note if one was created.
	if err := rt.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(out, "linked %s in %s\n", id, p.Path)
	return nil
}

// RunFind resolves a query to a node and prints where to go. A title-only
// match creates the note first.
func RunFind(ctx context.Context, cfg *Config, hint string, in io.Reader, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Sync(); err != nil {
		return err
	}

	svc := rt.Bridge(prompt.NewTerminal(in, out))
	node, err := svc.FindOrCreate(ctx, hint)
	if errors.Is(err, apperr.ErrCancelled) {
		fmt.Fprintln(out, "cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	if err := rt.Sync(); err != nil {
		return err
	}
	fmt.Fprintln(out, node.Path)
	return nil
}

// RunEnsureID repairs or installs the identifier block of a note.
func RunEnsureID(cfg *Config, path string, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc := rt.Bridge(nil)
	id, skipped, err := svc.EnsureIdentifier(path)
	if err != nil {
		return err
	}
	if skipped {
		fmt.Fprintf(out, "skipped %s (excluded)\n", path)
		return nil
	}

	if err := rt.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", id, path)
	return nil
}

// RunAudit prints vault notes missing an identifier block, one per line.
// When ask is true the recursive question is put to the user instead of
// taken from a flag.
func RunAudit(ctx context.Context, cfg *Config, dir string, recursive, ask bool, in io.Reader, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if ask {
		recursive, err = prompt.NewTerminal(in, out).ConfirmRecursive(ctx)
		if errors.Is(err, apperr.ErrCancelled) {
			fmt.Fprintln(out, "cancelled")
			return nil
		}
		if err != nil {
			return err
		}
	}

	paths, err := rt.Bridge(nil).ScanUnlinked(dir, recursive)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintf(out, "%d unlinked\n", len(paths))
	return nil
}

// RunLinked prints indexed nodes under dir, one path per line.
func RunLinked(cfg *Config, dir string, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Sync(); err != nil {
		return err
	}

	paths, err := rt.Bridge(nil).ScanLinked(dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
	return nil
}

// RunMCP syncs the index and serves the MCP tools over stdio.
func RunMCP(cfg *Config) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Sync(); err != nil {
		return err
	}

	srv := mcpserver.New(rt.Store, rt.Engine, rt.DB, rt.Bridge(nil))
	return srv.ServeStdio()
}

// RunSync runs a single vault-to-index reconciliation pass and exits.
func RunSync(cfg *Config, out io.Writer) error {
	rt, err := NewRuntime(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Sync(); err != nil {
		return err
	}
	fmt.Fprintln(out, "index synced")
	return nil
}

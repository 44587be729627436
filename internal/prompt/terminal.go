// Package prompt implements the interactive prompter over a terminal:
// a numbered candidate list on stdout, answers read line-wise from stdin.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stallerud/ansuz/internal/apperr"
	"github.com/stallerud/ansuz/internal/models"
)

// Terminal prompts on out and reads answers from in. End-of-input at any
// prompt counts as cancellation.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal prompter.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ChooseNode shows the candidates matching hint and reads a choice.
// A number picks a candidate; any other non-empty input becomes a
// title-only node (a request to create); an empty line cancels.
func (t *Terminal) ChooseNode(_ context.Context, hint string, candidates []models.Node) (models.Node, error) {
	matches := filter(candidates, hint)
	for i, n := range matches {
		fmt.Fprintf(t.out, "%3d. %s  (%s)\n", i+1, n.Title, n.Path)
	}
	if hint != "" {
		fmt.Fprintf(t.out, "node [%s]: ", hint)
	} else {
		fmt.Fprint(t.out, "node: ")
	}

	line, err := t.readLine()
	if err != nil {
		return models.Node{}, err
	}
	if line == "" {
		if hint == "" {
			return models.Node{}, apperr.ErrCancelled
		}
		line = hint
	}

	if i, err := strconv.Atoi(line); err == nil && i >= 1 && i <= len(matches) {
		return matches[i-1], nil
	}
	// Exact title match selects the candidate; anything else is a new title.
	for _, n := range matches {
		if strings.EqualFold(n.Title, line) {
			return n, nil
		}
	}
	return models.Node{Title: line}, nil
}

// ReadTags reads a space-separated tag list.
func (t *Terminal) ReadTags(_ context.Context) ([]string, error) {
	fmt.Fprint(t.out, "tags: ")
	line, err := t.readLine()
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

// ConfirmRecursive asks whether to descend into subdirectories.
func (t *Terminal) ConfirmRecursive(_ context.Context) (bool, error) {
	fmt.Fprint(t.out, "search recursively? [y/N]: ")
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && line == "" {
		return "", apperr.ErrCancelled
	}
	return strings.TrimSpace(line), nil
}

// filter returns candidates whose title or path contains hint,
// case-insensitively. An empty hint matches everything.
func filter(candidates []models.Node, hint string) []models.Node {
	if hint == "" {
		return candidates
	}
	needle := strings.ToLower(hint)
	var out []models.Node
	for _, n := range candidates {
		if strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Path), needle) {
			out = append(out, n)
		}
	}
	return out
}

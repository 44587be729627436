package bridge

import (
	"context"

	"github.com/stallerud/ansuz/internal/models"
)

// Prompter is the interactive collaborator the reconciliation engine
// depends on. Implementations block until the user answers; cancellation
// is reported as apperr.ErrCancelled and unwinds the current action.
// Tests substitute scripted implementations.
type Prompter interface {
	// ChooseNode presents the candidate nodes (hint pre-fills the query)
	// and returns the selection. A returned node with an empty ID and a
	// fresh Title is a title-only match: a request to create that note.
	ChooseNode(ctx context.Context, hint string, candidates []models.Node) (models.Node, error)

	// ReadTags collects classification tags for a note about to be created.
	ReadTags(ctx context.Context) ([]string, error)

	// ConfirmRecursive asks whether a scan should descend into
	// subdirectories.
	ConfirmRecursive(ctx context.Context) (bool, error)
}

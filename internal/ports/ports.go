package ports

import (
	"context"

	"github.com/forPelevin/podask/internal/types"
)

// LoadedDocument is one item from a DocumentSource. Err is set when the
// item could not be parsed; the rest of the collection is still usable.
type LoadedDocument struct {
	Name string
	Doc  types.Document
	Err  error
}

type DocumentSource interface {
	Documents(ctx context.Context) ([]LoadedDocument, error)
}

// Index is a read-only full-text index over excerpts.
type Index interface {
	Search(ctx context.Context, query string, filter types.ScopeFilter, topK int) ([]types.Excerpt, error)
}

type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

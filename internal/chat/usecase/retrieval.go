package usecase

import (
	"context"

	"inboxpilot-backend/pkg/chroma"
)

// Searcher finds the emails of one account most relevant to a query.
type Searcher interface {
	Search(ctx context.Context, accountID, query string) ([]chroma.Snippet, error)
}

// NoopSearcher is used when no vector index is configured.
type NoopSearcher struct{}

func (NoopSearcher) Search(ctx context.Context, accountID, query string) ([]chroma.Snippet, error) {
	return []chroma.Snippet{}, nil
}

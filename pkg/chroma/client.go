package chroma

import (
	"context"
	"fmt"
	"os"
	"strings"

	"inboxpilot-backend/pkg/config"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	"github.com/rs/zerolog/log"
)

// Metadata keys written by the ingestion service for every indexed email.
var snippetKeys = []string{"account_id", "email_id", "thread_id", "subject", "from", "sent_at"}

// Snippet is one retrieved email fragment, in relevance order.
type Snippet struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// querier is the part of chroma.Collection that Search needs.
type querier interface {
	Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (chroma.QueryResult, error)
}

type ChromaClient struct {
	client     chroma.Client
	collection querier
	nResults   int
}

func NewChromaClient(ctx context.Context, cfg *config.Config) (*ChromaClient, error) {
	// Set environment variable for Gemini API key if needed
	if cfg.GeminiApiKey != "" {
		os.Setenv("GEMINI_API_KEY", cfg.GeminiApiKey)
	}

	embedFunc, err := gemini.NewGeminiEmbeddingFunction(
		gemini.WithEnvAPIKey(),
		gemini.WithDefaultModel("text-embedding-004"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
	}

	client, err := chroma.NewHTTPClient(clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		cfg.ChromaCollection,
		chroma.WithEmbeddingFunctionCreate(embedFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", cfg.ChromaCollection, err)
	}

	nResults := cfg.ChatContextResults
	if nResults <= 0 {
		nResults = 10
	}

	log.Info().Str("collection", cfg.ChromaCollection).Msg("initialized Chroma client")
	return &ChromaClient{
		client:     client,
		collection: collection,
		nResults:   nResults,
	}, nil
}

// clientOptions targets Chroma Cloud when an API key is set, otherwise a
// self-hosted server at CHROMA_URL.
func clientOptions(cfg *config.Config) []chroma.ClientOption {
	var opts []chroma.ClientOption
	if cfg.ChromaAPIKey != "" {
		baseURL := cfg.ChromaURL
		if baseURL == "" {
			baseURL = chroma.ChromaCloudEndpoint
		}
		opts = append(opts, chroma.WithBaseURL(baseURL), chroma.WithCloudAPIKey(cfg.ChromaAPIKey))
	} else {
		baseURL := cfg.ChromaURL
		if baseURL == "" {
			baseURL = "http://localhost:8000"
		}
		opts = append(opts, chroma.WithBaseURL(baseURL))
	}

	switch {
	case cfg.ChromaDatabase != "" && cfg.ChromaTenant != "":
		opts = append(opts, chroma.WithDatabaseAndTenant(cfg.ChromaDatabase, cfg.ChromaTenant))
	case cfg.ChromaTenant != "":
		opts = append(opts, chroma.WithTenant(cfg.ChromaTenant))
	}
	return opts
}

// Search returns the emails of accountID most similar to query.
func (c *ChromaClient) Search(ctx context.Context, accountID, query string) ([]Snippet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Snippet{}, nil
	}

	results, err := c.collection.Query(
		ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(c.nResults),
		chroma.WithWhereQuery(chroma.EqString("account_id", accountID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	if results == nil || results.CountGroups() == 0 {
		return []Snippet{}, nil
	}

	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return []Snippet{}, nil
	}
	ids := idGroups[0]

	var docs chroma.Documents
	if groups := results.GetDocumentsGroups(); len(groups) > 0 {
		docs = groups[0]
	}
	var metas chroma.DocumentMetadatas
	if groups := results.GetMetadatasGroups(); len(groups) > 0 {
		metas = groups[0]
	}

	snippets := make([]Snippet, 0, len(ids))
	for i, id := range ids {
		snippet := Snippet{ID: string(id), Metadata: map[string]string{}}
		if i < len(docs) && docs[i] != nil {
			snippet.Document = docs[i].ContentString()
		}
		if i < len(metas) && metas[i] != nil {
			for _, key := range snippetKeys {
				if v, ok := metas[i].GetString(key); ok {
					snippet.Metadata[key] = v
				}
			}
		}
		snippets = append(snippets, snippet)
	}

	log.Debug().Str("account_id", accountID).Int("results", len(snippets)).Msg("retrieved context")
	return snippets, nil
}

func (c *ChromaClient) Close() error {
	return c.client.Close()
}

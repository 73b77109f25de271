// Package retriever ranks indexed chunks against a query by cosine
// similarity. Search and SearchWithDiagnostics share one ranking routine;
// the diagnostic variant additionally marks results whose content literally
// contains the query.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/embeddings"

	"inventory-rag/internal/chromemdb"
	"inventory-rag/internal/models"
)

// ErrNoIndex signals that search was invoked before an index was built. It
// accompanies an empty result slice so callers can show guidance instead of
// crashing.
var ErrNoIndex = errors.New("no vector index available; load a document and build the index first")

// Search returns the top-k chunks for query, ordered by descending
// similarity with ties broken by chunk sequence position. k is clamped to
// [1, chunk count].
func Search(ctx context.Context, idx *chromemdb.Index, embedder embeddings.Embedder, query string, k int) ([]models.SearchResult, error) {
	if idx == nil || idx.Count() == 0 {
		return nil, ErrNoIndex
	}
	return rank(ctx, idx, embedder, query, k)
}

// SearchWithDiagnostics runs the same ranking as Search and reports for each
// result whether the query occurs verbatim (case-insensitive) in the chunk
// content, separating textual hits from purely vector-similarity hits.
func SearchWithDiagnostics(ctx context.Context, idx *chromemdb.Index, embedder embeddings.Embedder, query string, k int) ([]models.DiagnosticResult, error) {
	ranked, err := Search(ctx, idx, embedder, query, k)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	results := make([]models.DiagnosticResult, len(ranked))
	for i, r := range ranked {
		results[i] = models.DiagnosticResult{
			SearchResult: r,
			DirectMatch:  needle != "" && strings.Contains(strings.ToLower(r.Chunk.Content), needle),
		}
	}
	return results, nil
}

func rank(ctx context.Context, idx *chromemdb.Index, embedder embeddings.Embedder, query string, k int) ([]models.SearchResult, error) {
	if k < 1 {
		k = 1
	}
	if k > idx.Count() {
		k = idx.Count()
	}

	queryEmbedding, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	raw, err := idx.Query(ctx, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	chunks := idx.Chunks()
	results := make([]models.SearchResult, 0, len(raw))
	for _, r := range raw {
		seq, err := strconv.Atoi(r.Metadata["seq"])
		if err != nil || seq < 0 || seq >= len(chunks) {
			return nil, fmt.Errorf("result %q carries no valid sequence position", r.ID)
		}
		results = append(results, models.SearchResult{Chunk: chunks[seq], Score: r.Similarity})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Metadata.Seq < results[j].Chunk.Metadata.Seq
	})
	return results, nil
}

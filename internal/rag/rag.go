package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"inventory-rag/internal/chromemdb"
	"inventory-rag/internal/models"
	"inventory-rag/internal/retriever"
)

// ErrGeneration wraps a failed completion call. The underlying cause is
// attached; no retry happens at this layer.
var ErrGeneration = errors.New("answer generation failed")

const defaultTopK = 5

// Completer issues one completion request against an external model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RAG composes answers from retrieved chunks and a completion model.
type RAG struct {
	index     *chromemdb.Index
	embedder  embeddings.Embedder
	completer Completer
	topK      int
}

func NewRAG(index *chromemdb.Index, embedder embeddings.Embedder, completer Completer, topK int) *RAG {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &RAG{index: index, embedder: embedder, completer: completer, topK: topK}
}

// Query retrieves the top chunks for question, assembles them into a context
// block, and returns the model's response verbatim. When nothing relevant is
// indexed it returns the NoRelevantContentMessage sentinel without calling
// the model; "nothing found" is an expected outcome, not an error.
func (r *RAG) Query(ctx context.Context, question string) (string, error) {
	results, err := retriever.Search(ctx, r.index, r.embedder, question, r.topK)
	if errors.Is(err, retriever.ErrNoIndex) {
		return models.NoRelevantContentMessage, nil
	}
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return models.NoRelevantContentMessage, nil
	}

	var contextBlock strings.Builder
	for i, res := range results {
		if i > 0 {
			contextBlock.WriteString(models.ContextSeparator)
		}
		contextBlock.WriteString(res.Chunk.Content)
	}

	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextBlock.String(), question)
	log.Debug().Int("chunks", len(results)).Msg("Requesting completion")

	answer, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

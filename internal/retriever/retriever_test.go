package retriever

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-rag/internal/chromemdb"
	"inventory-rag/internal/models"
)

type vocabEmbedder struct{}

var vocab = []string{"toyota", "honda", "ford", "corolla", "civic", "focus", "price"}

func embedText(text string) []float32 {
	v := make([]float32, len(vocab)+1)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		term := strings.Trim(field, ".,:;!?$")
		for i, w := range vocab {
			if term == w {
				v[i]++
			}
		}
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		v[len(v)-1] = 1
		return v
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v
}

func (vocabEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

func (vocabEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func buildIndex(t *testing.T, contents ...string) *chromemdb.Index {
	t.Helper()
	chunks := make([]models.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = models.Chunk{
			Content:  c,
			Metadata: models.ChunkMetadata{ChunkType: models.ChunkTypeBrandMatch, CarInfo: true, Page: 1, Seq: i},
		}
	}
	idx, err := chromemdb.NewManager("test", "").Build(context.Background(), chunks, vocabEmbedder{})
	require.NoError(t, err)
	return idx
}

func TestSearchWithoutIndex(t *testing.T) {
	results, err := Search(context.Background(), nil, vocabEmbedder{}, "Toyota", 3)
	assert.ErrorIs(t, err, ErrNoIndex)
	assert.Empty(t, results)
}

func TestSearchReturnsClosestChunkFirst(t *testing.T) {
	idx := buildIndex(t,
		"Toyota Corolla 2020 Price: $18,500",
		"Honda Civic 2019 Price: $15,000",
	)

	results, err := Search(context.Background(), idx, vocabEmbedder{}, "Toyota", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Content, "Corolla")
}

func TestSearchClampsK(t *testing.T) {
	idx := buildIndex(t, "Toyota Corolla", "Honda Civic", "Ford Focus")
	ctx := context.Background()

	results, err := Search(ctx, idx, vocabEmbedder{}, "Toyota", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = Search(ctx, idx, vocabEmbedder{}, "Toyota", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchScoresNonIncreasing(t *testing.T) {
	idx := buildIndex(t, "Toyota Corolla", "Toyota Corolla Price", "Honda Civic", "Ford Focus")

	results, err := Search(context.Background(), idx, vocabEmbedder{}, "Toyota Corolla", 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchBreaksTiesBySequence(t *testing.T) {
	// identical contents embed identically, so their scores tie exactly
	idx := buildIndex(t, "Ford Focus", "Ford Focus", "Honda Civic")

	results, err := Search(context.Background(), idx, vocabEmbedder{}, "Ford", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Chunk.Metadata.Seq)
	assert.Equal(t, 1, results[1].Chunk.Metadata.Seq)
}

func TestSearchWithDiagnosticsMarksDirectMatches(t *testing.T) {
	idx := buildIndex(t,
		"Toyota Corolla 2020 Price: $18,500",
		"Honda Civic 2019 Price: $15,000",
	)

	results, err := SearchWithDiagnostics(context.Background(), idx, vocabEmbedder{}, "Toyota", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Contains(t, results[0].Chunk.Content, "Toyota")
	assert.True(t, results[0].DirectMatch)
	assert.False(t, results[1].DirectMatch)
}

func TestSearchWithDiagnosticsWithoutIndex(t *testing.T) {
	results, err := SearchWithDiagnostics(context.Background(), nil, vocabEmbedder{}, "Toyota", 2)
	assert.ErrorIs(t, err, ErrNoIndex)
	assert.Empty(t, results)
}

// Package chromemdb owns the vector index lifecycle: build from chunks,
// save/load with a sidecar metadata file, and reset. The similarity index
// itself is chromem-go; this package binds chunk records to their vectors by
// sequence position.
package chromemdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"inventory-rag/internal/embedding"
	"inventory-rag/internal/helper"
	"inventory-rag/internal/models"
)

const (
	indexFileName   = "index.chromem"
	sidecarFileName = "chunks.json"
	compress        = false
)

var (
	ErrEmptyInput    = errors.New("no chunks to index")
	ErrIndexNotFound = errors.New("no persisted index found")
	ErrCorruptIndex  = errors.New("persisted index is corrupt or inconsistent")
)

// Index binds one chunk set to its similarity index. A session holds at most
// one Index; Build replaces any prior one wholesale, never incrementally.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunks     []models.Chunk
	vectors    [][]float32
}

// Chunks returns the indexed chunk records in sequence order.
func (idx *Index) Chunks() []models.Chunk {
	return idx.chunks
}

// Embeddings returns the chunk vectors in sequence order. Nil for an Index
// restored from disk, where vectors live only inside the collection.
func (idx *Index) Embeddings() [][]float32 {
	return idx.vectors
}

func (idx *Index) Count() int {
	return len(idx.chunks)
}

// Query returns up to k nearest results for a precomputed query embedding.
func (idx *Index) Query(ctx context.Context, queryEmbedding []float32, k int) ([]chromem.Result, error) {
	return idx.collection.QueryEmbedding(ctx, queryEmbedding, k, nil, nil)
}

// Manager creates, persists, and restores Index values for one collection.
type Manager struct {
	collectionName string
	encryptionKey  string
}

func NewManager(collectionName, encryptionKey string) *Manager {
	return &Manager{collectionName: collectionName, encryptionKey: encryptionKey}
}

// Build embeds every chunk in one batched request and constructs a fresh
// in-memory index over the vectors.
func (m *Manager) Build(ctx context.Context, chunks []models.Chunk, embedder embeddings.Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyInput
	}

	vectors, err := embedding.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(m.collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}

	buildID, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s-%d", buildID, chunk.Metadata.Seq),
			Content:   chunk.Content,
			Metadata:  metadataFields(chunk.Metadata),
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("failed to add documents: %v", err)
	}

	log.Info().Int("chunks", len(chunks)).Msg("Built vector index")
	return &Index{db: db, collection: collection, chunks: chunks, vectors: vectors}, nil
}

// Save serializes the index and its chunk records under dir: the chromem
// export plus a chunks.json sidecar that is recoverable without re-embedding.
func (m *Manager) Save(idx *Index, dir string) error {
	if idx == nil || idx.Count() == 0 {
		return ErrEmptyInput
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	sidecar, err := json.MarshalIndent(idx.chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chunk sidecar: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sidecarFileName), sidecar, 0o644); err != nil {
		return fmt.Errorf("failed to write chunk sidecar: %w", err)
	}

	if err := idx.db.ExportToFile(filepath.Join(dir, indexFileName), compress, m.encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to export index: %w", err)
	}

	log.Info().Str("dir", dir).Int("chunks", idx.Count()).Msg("Saved vector index")
	return nil
}

// Load reverses Save. Both files must be present and agree on chunk count
// and order; any mismatch or decode failure is reported as corruption.
func (m *Manager) Load(dir string) (*Index, error) {
	indexPath := filepath.Join(dir, indexFileName)
	sidecarPath := filepath.Join(dir, sidecarFileName)
	for _, p := range []string{indexPath, sidecarPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, p)
		}
	}

	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w: chunk sidecar: %v", ErrCorruptIndex, err)
	}
	for i, chunk := range chunks {
		if chunk.Metadata.Seq != i {
			return nil, fmt.Errorf("%w: sidecar out of order at position %d", ErrCorruptIndex, i)
		}
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(indexPath, m.encryptionKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	collection := db.GetCollection(m.collectionName, nil)
	if collection == nil {
		return nil, fmt.Errorf("%w: collection %q missing from export", ErrCorruptIndex, m.collectionName)
	}
	if collection.Count() != len(chunks) {
		return nil, fmt.Errorf("%w: index holds %d vectors but sidecar lists %d chunks",
			ErrCorruptIndex, collection.Count(), len(chunks))
	}

	log.Info().Str("dir", dir).Int("chunks", len(chunks)).Msg("Loaded vector index")
	return &Index{db: db, collection: collection, chunks: chunks}, nil
}

// Remove deletes a persisted index directory. Idempotent.
func (m *Manager) Remove(dir string) error {
	for _, name := range []string{indexFileName, sidecarFileName} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func metadataFields(md models.ChunkMetadata) map[string]string {
	return map[string]string{
		"chunk_type": string(md.ChunkType),
		"car_info":   strconv.FormatBool(md.CarInfo),
		"page":       strconv.Itoa(md.Page),
		"seq":        strconv.Itoa(md.Seq),
	}
}

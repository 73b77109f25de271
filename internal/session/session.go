// Package session coordinates one document lifecycle: load, chunk, index,
// retrieve, answer. State is an explicit value owned by the Service, so
// multiple independent sessions can coexist and tests need no global reset.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"inventory-rag/internal/chromemdb"
	"inventory-rag/internal/chunker"
	"inventory-rag/internal/config"
	"inventory-rag/internal/loader"
	"inventory-rag/internal/models"
	"inventory-rag/internal/rag"
	"inventory-rag/internal/retriever"
)

// ErrNoDocument signals that an operation requires a loaded document first.
var ErrNoDocument = errors.New("no document loaded; load a document before building the index")

// State tracks session progress: empty, then document loaded, then index
// built. Loading a new document drops back to loaded and invalidates the
// index.
type State struct {
	PDFLoaded  bool
	IndexBuilt bool
	SourcePath string
}

// Service gates every pipeline operation on the session state.
type Service struct {
	cfg       *config.Config
	embedder  embeddings.Embedder
	completer rag.Completer
	manager   *chromemdb.Manager

	state  State
	chunks []models.Chunk
	index  *chromemdb.Index
}

func NewService(cfg *config.Config, embedder embeddings.Embedder, completer rag.Completer) *Service {
	return &Service{
		cfg:       cfg,
		embedder:  embedder,
		completer: completer,
		manager:   chromemdb.NewManager(cfg.Store.Collection, cfg.RAG.EncryptionKey),
	}
}

// LoadDocument extracts and chunks the document at path, replacing any
// previously loaded chunk set and invalidating the current index.
func (s *Service) LoadDocument(ctx context.Context, path string) error {
	pages, err := loader.Extract(path)
	if err != nil {
		return err
	}

	chunks, err := chunker.Chunk(pages, s.cfg.RAG.ChunkSize, s.cfg.RAG.ChunkOverlap)
	if err != nil {
		return err
	}

	s.chunks = chunks
	s.index = nil
	s.state = State{PDFLoaded: true, SourcePath: path}
	log.Info().Str("path", path).Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Loaded document")
	return nil
}

// Chunks returns the current chunk set, for inspection and archiving.
func (s *Service) Chunks() []models.Chunk {
	return s.chunks
}

// Index returns the current index, nil before a build.
func (s *Service) Index() *chromemdb.Index {
	return s.index
}

// BuildIndex embeds the loaded chunks and builds a fresh index. IndexBuilt
// is only set after the build succeeds, so a half-built index is never
// observable.
func (s *Service) BuildIndex(ctx context.Context) error {
	if !s.state.PDFLoaded {
		return ErrNoDocument
	}

	idx, err := s.manager.Build(ctx, s.chunks, s.embedder)
	if err != nil {
		return err
	}
	s.index = idx
	s.state.IndexBuilt = true
	return nil
}

// SaveIndex persists the built index under dir.
func (s *Service) SaveIndex(dir string) error {
	if s.index == nil {
		return retriever.ErrNoIndex
	}
	return s.manager.Save(s.index, dir)
}

// LoadIndexFrom restores a previously saved index and its chunk set,
// bringing the session straight to the index-built state.
func (s *Service) LoadIndexFrom(dir string) error {
	idx, err := s.manager.Load(dir)
	if err != nil {
		return err
	}
	s.index = idx
	s.chunks = idx.Chunks()
	s.state = State{PDFLoaded: true, IndexBuilt: true, SourcePath: dir}
	return nil
}

// Search returns the top-k chunks for query. Before a build it returns an
// empty slice alongside retriever.ErrNoIndex.
func (s *Service) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	return retriever.Search(ctx, s.index, s.embedder, query, k)
}

// SearchWithDiagnostics is Search plus direct-match reporting.
func (s *Service) SearchWithDiagnostics(ctx context.Context, query string, k int) ([]models.DiagnosticResult, error) {
	return retriever.SearchWithDiagnostics(ctx, s.index, s.embedder, query, k)
}

// Answer retrieves context for question and asks the completion model.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	composer := rag.NewRAG(s.index, s.embedder, s.completer, s.cfg.RAG.TopK)
	return composer.Query(ctx, question)
}

// Status is a pure read used to decide whether build/search are safe to
// invoke.
func (s *Service) Status() models.Status {
	return models.Status{
		PDFLoaded:  s.state.PDFLoaded,
		IndexBuilt: s.state.IndexBuilt,
		ChunkCount: len(s.chunks),
		SourcePath: s.state.SourcePath,
	}
}

// Reset discards the chunk set and index. Idempotent.
func (s *Service) Reset() {
	s.chunks = nil
	s.index = nil
	s.state = State{}
}

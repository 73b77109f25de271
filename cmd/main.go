package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"inventory-rag/internal/chromemdb"
	"inventory-rag/internal/config"
	"inventory-rag/internal/db"
	"inventory-rag/internal/embedding"
	"inventory-rag/internal/helper"
	"inventory-rag/internal/llmservice"
	"inventory-rag/internal/models"
	"inventory-rag/internal/session"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file to ingest")
	query := flag.String("query", "", "Question to answer from the indexed document")
	k := flag.Int("k", 0, "Number of chunks to retrieve (defaults to config top_k)")
	debug := flag.Bool("debug", false, "Print ranked chunks with direct-match diagnostics instead of answering")
	dryRun := flag.Bool("dry-run", false, "Chunk the document and print the result without embedding")
	archive := flag.Bool("archive", false, "Also store chunks and embeddings in Postgres after ingesting")
	status := flag.Bool("status", false, "Print session status for the persisted index")
	reset := flag.Bool("reset", false, "Remove the persisted index")
	flag.Parse()

	if *filePath != "" && *query != "" {
		log.Fatal().Msg("Please provide either a document file using the -file flag or a question using the -query flag, but not both")
	}

	ctx := context.Background()

	switch {
	case *filePath != "":
		ingestDocument(ctx, *filePath, *dryRun, *archive)
	case *query != "":
		answerQuestion(ctx, *query, *k, *debug)
	case *status:
		printStatus()
	case *reset:
		resetIndex()
	default:
		flag.Usage()
	}
}

func newService(cfg *config.Config) *session.Service {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	return session.NewService(cfg, embedder, llmservice.NewClient(&cfg.InferenceLLM))
}

func ingestDocument(ctx context.Context, filePath string, dryRun, archive bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	svc := newService(cfg)
	if err := svc.LoadDocument(ctx, filePath); err != nil {
		log.Fatal().Err(err).Msg("Error loading document")
	}

	if dryRun {
		helper.PrettyPrint(svc.Chunks())
		return
	}

	if err := svc.BuildIndex(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}
	if err := svc.SaveIndex(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error saving index")
	}

	if archive {
		archiveChunks(ctx, cfg, svc, filePath)
	}

	helper.PrettyPrint(svc.Status())
}

func archiveChunks(ctx context.Context, cfg *config.Config, svc *session.Service, source string) {
	vectors := svc.Index().Embeddings()
	if vectors == nil {
		log.Fatal().Msg("No embeddings available to archive; archive runs only after a fresh build")
	}

	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(sqldb, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.InitDB(ctx, dbInstance); err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
	}
	if err := db.StoreChunks(ctx, dbInstance, source, svc.Chunks(), vectors); err != nil {
		log.Fatal().Err(err).Msg("Error archiving chunks")
	}
	log.Info().Int("chunks", len(svc.Chunks())).Msg("Archived chunks to Postgres")
}

func answerQuestion(ctx context.Context, query string, k int, debug bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	svc := newService(cfg)
	if err := svc.LoadIndexFrom(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error loading index; ingest a document first with -file")
	}

	if k <= 0 {
		k = cfg.RAG.TopK
	}

	if debug {
		results, err := svc.SearchWithDiagnostics(ctx, query, k)
		if err != nil {
			log.Fatal().Err(err).Msg("Error searching")
		}
		for i, res := range results {
			fmt.Printf("%2d. score=%.4f direct=%t type=%s page=%d\n%s\n\n",
				i+1, res.Score, res.DirectMatch, res.Chunk.Metadata.ChunkType, res.Chunk.Metadata.Page, res.Chunk.Content)
		}
		return
	}

	answer, err := svc.Answer(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering")
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer)
}

func printStatus() {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	manager := chromemdb.NewManager(cfg.Store.Collection, cfg.RAG.EncryptionKey)
	idx, err := manager.Load(cfg.Store.Path)
	if err != nil {
		log.Warn().Err(err).Msg("No usable persisted index")
		helper.PrettyPrint(models.Status{})
		return
	}
	helper.PrettyPrint(models.Status{
		PDFLoaded:  true,
		IndexBuilt: true,
		ChunkCount: idx.Count(),
		SourcePath: cfg.Store.Path,
	})
}

func resetIndex() {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	manager := chromemdb.NewManager(cfg.Store.Collection, cfg.RAG.EncryptionKey)
	if err := manager.Remove(cfg.Store.Path); err != nil {
		log.Fatal().Err(err).Msg("Error removing persisted index")
	}
	log.Info().Str("path", cfg.Store.Path).Msg("Removed persisted index")
}

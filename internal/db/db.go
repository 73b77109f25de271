// Package db is an optional Postgres/pgvector archive of chunks and their
// embeddings, for long-term storage and SQL-side similarity queries outside
// the session-scoped chromem index.
package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"inventory-rag/internal/config"
	"inventory-rag/internal/models"
)

type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Content       string    `bun:"content,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	ChunkType     string    `bun:"chunk_type,notnull"`
	CarInfo       bool      `bun:"car_info,notnull"`
	Page          int       `bun:"page,notnull"`
	Seq           int       `bun:"seq,notnull"`
	SourceFile    string    `bun:"source_file,notnull"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	_, err := db.NewCreateTable().Model((*Chunk)(nil)).IfNotExists().Exec(ctx)
	return err
}

// StoreChunks archives chunks with their embeddings; vectors must be in
// chunk order.
func StoreChunks(ctx context.Context, db *bun.DB, source string, chunks []models.Chunk, vectors [][]float32) error {
	rows := make([]Chunk, len(chunks))
	for i, chunk := range chunks {
		rows[i] = Chunk{
			Content:    chunk.Content,
			Embedding:  vectors[i],
			ChunkType:  string(chunk.Metadata.ChunkType),
			CarInfo:    chunk.Metadata.CarInfo,
			Page:       chunk.Metadata.Page,
			Seq:        chunk.Metadata.Seq,
			SourceFile: source,
		}
	}
	_, err := db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// SearchChunks ranks archived chunks by pgvector distance to queryEmbedding.
func SearchChunks(ctx context.Context, db *bun.DB, queryEmbedding []float32, limit int) ([]Chunk, error) {
	var rows []Chunk
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("embedding <-> ?", queryEmbedding).
		Limit(limit).
		Scan(ctx)
	return rows, err
}

// drop table chunks
func DropChunks(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Chunk)(nil)).IfExists().Exec(ctx)
	return err
}

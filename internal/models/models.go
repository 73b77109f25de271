package models

// ChunkType records which tier of the chunking heuristic produced a chunk.
// It is kept for diagnostics and downstream confidence; retrieval ranking
// never looks at it.
type ChunkType string

const (
	ChunkTypeBrandMatch    ChunkType = "brand_match"
	ChunkTypeKeywordMatch  ChunkType = "keyword_match"
	ChunkTypeYearPattern   ChunkType = "year_pattern"
	ChunkTypeSentenceSplit ChunkType = "sentence_split"
	ChunkTypeFallback      ChunkType = "fallback"
)

// IsValid reports whether the ChunkType is one of the known tiers.
func (c ChunkType) IsValid() bool {
	switch c {
	case ChunkTypeBrandMatch, ChunkTypeKeywordMatch, ChunkTypeYearPattern,
		ChunkTypeSentenceSplit, ChunkTypeFallback:
		return true
	}
	return false
}

// Page is the raw text of one extracted document page.
type Page struct {
	Text   string
	Number int
}

// ChunkMetadata describes where a chunk came from and what produced it.
// Seq is the stable sequence position binding a chunk to its embedding
// vector in the index.
type ChunkMetadata struct {
	ChunkType ChunkType `json:"chunk_type"`
	CarInfo   bool      `json:"car_info"`
	Page      int       `json:"page"`
	Seq       int       `json:"seq"`
}

// Chunk is the atomic unit of retrieval. Content is never empty after
// trimming; empty candidates are discarded before storage.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// DiagnosticResult additionally reports whether the query literally occurs
// in the chunk content, distinguishing textual hits from purely
// vector-similarity hits.
type DiagnosticResult struct {
	SearchResult
	DirectMatch bool
}

// Status is a pure read of session readiness.
type Status struct {
	PDFLoaded  bool   `json:"pdf_loaded"`
	IndexBuilt bool   `json:"index_built"`
	ChunkCount int    `json:"chunk_count"`
	SourcePath string `json:"source_path"`
}

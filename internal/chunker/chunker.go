// Package chunker turns extracted pages into retrieval chunks using a tiered
// heuristic: domain-aware boundaries (brand, year) are preferred so that one
// inventory listing stays inside one chunk, with sentence and fixed-size
// splitting as fallbacks.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"inventory-rag/internal/models"
)

var ErrInvalidChunkParams = errors.New("chunk size must be greater than chunk overlap and overlap must not be negative")

// tier is one strategy in the chain. split returns the chunk contents this
// tier extracts from a page's text, or nil when the tier does not apply.
type tier struct {
	chunkType models.ChunkType
	carInfo   bool
	split     func(text string, size, overlap int) []string
}

// Tiers are tried in order per page; the first tier yielding a non-empty
// chunk wins and the rest are skipped. Tiers are never combined on one page.
var tiers = []tier{
	{models.ChunkTypeBrandMatch, true, splitByBrandAnchor},
	{models.ChunkTypeKeywordMatch, true, splitByBrandRuns},
	{models.ChunkTypeYearPattern, true, splitByYearAnchor},
	{models.ChunkTypeSentenceSplit, false, splitBySentences},
	{models.ChunkTypeFallback, false, splitFixed},
}

// Chunk converts pages into chunk records. size must exceed overlap and
// overlap must be non-negative; beyond that the engine never fails, since the
// fixed-size tier guarantees at least one chunk per non-empty page.
func Chunk(pages []models.Page, size, overlap int) ([]models.Chunk, error) {
	if overlap < 0 || size <= overlap {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunkParams, size, overlap)
	}

	var chunks []models.Chunk
	seq := 0
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, t := range tiers {
			parts := trimNonEmpty(t.split(page.Text, size, overlap))
			if len(parts) == 0 {
				continue
			}
			log.Debug().
				Int("page", page.Number).
				Str("tier", string(t.chunkType)).
				Int("chunks", len(parts)).
				Msg("Chunked page")
			for _, part := range parts {
				chunks = append(chunks, models.Chunk{
					Content: part,
					Metadata: models.ChunkMetadata{
						ChunkType: t.chunkType,
						CarInfo:   t.carInfo,
						Page:      page.Number,
						Seq:       seq,
					},
				})
				seq++
			}
			break
		}
	}
	return chunks, nil
}

// splitByBrandAnchor groups lines into one chunk per brand-anchored record:
// a line whose first token is a known brand starts a record, and the
// following lines belong to it until the next anchor. Lines before the first
// anchor are folded into the first record so no text is dropped.
func splitByBrandAnchor(text string, _, _ int) []string {
	lines := splitLines(text)
	var groups []string
	var current []string
	anchored := false
	for _, line := range lines {
		if lineStartsWithBrand(line) {
			if anchored {
				groups = append(groups, strings.Join(current, "\n"))
				current = nil
			}
			anchored = true
		} else if !anchored {
			current = append(current, line)
			continue
		}
		current = append(current, line)
	}
	if !anchored {
		return nil
	}
	return append(groups, strings.Join(current, "\n"))
}

// splitByBrandRuns extracts maximal runs of consecutive lines that mention a
// brand anywhere. Only consulted when no line starts with a brand.
func splitByBrandRuns(text string, _, _ int) []string {
	lines := splitLines(text)
	var groups []string
	var current []string
	found := false
	for _, line := range lines {
		if lineContainsBrand(line) {
			current = append(current, line)
			found = true
		} else if len(current) > 0 {
			groups = append(groups, strings.Join(current, "\n"))
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, strings.Join(current, "\n"))
	}
	if !found {
		return nil
	}
	return groups
}

// splitByYearAnchor mirrors the brand anchor split with model-year lines as
// anchors: a line containing a standalone year in [2000, 2025] starts a
// record.
func splitByYearAnchor(text string, _, _ int) []string {
	lines := splitLines(text)
	var groups []string
	var current []string
	anchored := false
	for _, line := range lines {
		if lineHasModelYear(line) {
			if anchored {
				groups = append(groups, strings.Join(current, "\n"))
				current = nil
			}
			anchored = true
		} else if !anchored {
			current = append(current, line)
			continue
		}
		current = append(current, line)
	}
	if !anchored {
		return nil
	}
	return append(groups, strings.Join(current, "\n"))
}

// splitBySentences splits on terminal punctuation and regroups consecutive
// sentences up to size characters per chunk. A trailing fragment without
// closing punctuation is kept as one more sentence so no page text is lost.
func splitBySentences(text string, size, _ int) []string {
	matches := sentenceRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	var sentences []string
	last := 0
	for _, m := range matches {
		sentences = append(sentences, text[m[0]:m[1]])
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	var groups []string
	var b strings.Builder
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+len(s)+1 > size {
			groups = append(groups, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s)
	}
	if b.Len() > 0 {
		groups = append(groups, b.String())
	}
	return groups
}

// splitFixed is the last resort: fixed windows of size characters advancing
// by size-overlap, so every non-empty page yields at least one chunk.
// Windows are measured in runes so multi-byte text is never cut mid-rune.
func splitFixed(text string, size, overlap int) []string {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}
	runes := []rune(content)
	if len(runes) <= size {
		return []string{content}
	}

	var out []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// splitLines returns the trimmed non-empty lines of a page.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func trimNonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/dartrag/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = def.ChunkOverlap
	}
	if c.MinChunk <= 0 {
		c.MinChunk = def.MinChunk
	}
	return c
}

// ChunkSections splits extracted filing sections into chunks. Each chunk's
// breadcrumb is [company, section title].
func ChunkSections(company string, sections []document.Section, cfg Config) []document.Chunk {
	cfg = cfg.withDefaults()
	var chunks []document.Chunk
	for _, s := range sections {
		chunks = appendChunks(chunks, s.Content, breadcrumb(company, s.OriginalSection), 0, cfg)
	}
	return chunks
}

// ChunkDocuments splits report page documents into chunks, keeping the page
// number on every chunk.
func ChunkDocuments(docs []document.Document, cfg Config) []document.Chunk {
	cfg = cfg.withDefaults()
	var chunks []document.Chunk
	for _, d := range docs {
		section := d.Metadata.Section
		if section == "" && d.Metadata.Page > 0 {
			section = fmt.Sprintf("Page %d", d.Metadata.Page)
		}
		bc := breadcrumb(d.Metadata.CompanyCode, section)
		chunks = appendChunks(chunks, d.PageContent, bc, d.Metadata.Page, cfg)
	}
	return chunks
}

func appendChunks(chunks []document.Chunk, text string, bc []string, page int, cfg Config) []document.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return chunks
	}

	parts := []string{text}
	if EstimateTokens(text) > cfg.ChunkSize {
		parts = splitText(text, cfg.ChunkSize, cfg.ChunkOverlap)
	}
	for _, part := range parts {
		if EstimateTokens(part) < cfg.MinChunk {
			continue
		}
		chunks = append(chunks, document.Chunk{
			Text:       part,
			Index:      len(chunks),
			Breadcrumb: copyBreadcrumb(bc),
			Page:       page,
		})
	}
	return chunks
}

func breadcrumb(parts ...string) []string {
	var bc []string
	for _, p := range parts {
		if p != "" {
			bc = append(bc, p)
		}
	}
	return bc
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
// Section bodies hold one block of markup text per line, so lines are the
// first split unit.
func splitText(text string, targetTokens, overlapTokens int) []string {
	lines := splitByLines(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, line := range lines {
		lineTokens := EstimateTokens(line)

		// A single line over the target is split further by sentence.
		if lineTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(line, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+lineTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
		currentTokens += lineTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

func splitByLines(text string) []string {
	var result []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			result = append(result, l)
		}
	}
	return result
}

// splitBySentences breaks a long line into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences cuts after '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// getOverlapText returns trailing words worth about targetTokens.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	var picked int
	tokens := 0.0
	for i := len(words) - 1; i >= 0; i-- {
		tokens += wordTokens(words[i])
		if tokens > float64(targetTokens) {
			break
		}
		picked++
	}
	if picked == 0 || picked == len(words) {
		return ""
	}
	return strings.Join(words[len(words)-picked:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}

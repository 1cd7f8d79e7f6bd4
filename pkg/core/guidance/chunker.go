package guidance

import "strings"

// Chunking defaults tuned for regulation text
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits document text into overlapping chunks sized for embedding
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewChunker creates a chunker with the default size and overlap
func NewChunker() *Chunker {
	return &Chunker{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// Split breaks text into chunks of at most ChunkSize characters, preferring
// paragraph then sentence boundaries, with ChunkOverlap characters carried
// between consecutive chunks.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.ChunkSize
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := c.findBreak(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - c.ChunkOverlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findBreak looks backwards from end for a paragraph break, then a sentence
// end, then whitespace, and falls back to a hard cut at end.
func (c *Chunker) findBreak(text string, start, end int) int {
	window := text[start:end]

	if i := strings.LastIndex(window, "\n\n"); i > c.ChunkSize/2 {
		return start + i + 2
	}
	for _, sep := range []string{". ", ".\n", "? ", "! "} {
		if i := strings.LastIndex(window, sep); i > c.ChunkSize/2 {
			return start + i + len(sep)
		}
	}
	if i := strings.LastIndexAny(window, " \n\t"); i > c.ChunkSize/2 {
		return start + i + 1
	}
	return end
}

package ingestion_engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivamm1101/doc-ai/internal/models"
)

var ErrInvalidChunkWindow = errors.New("chunk window: size must be positive and overlap in [0, size)")

type ChunkOptions struct {
	SizeWords     int
	OverlapWords  int
	IncludeTables bool
}

func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{SizeWords: 400, OverlapWords: 50, IncludeTables: true}
}

// Validate rejects windows that would never advance.
func (o ChunkOptions) Validate() error {
	if o.SizeWords <= 0 || o.OverlapWords < 0 || o.OverlapWords >= o.SizeWords {
		return fmt.Errorf("%w (size=%d overlap=%d)", ErrInvalidChunkWindow, o.SizeWords, o.OverlapWords)
	}
	return nil
}

// Chunker splits page content into overlapping word windows. It holds no
// per-call state; every Chunk call returns a fresh slice.
type Chunker struct {
	opts  ChunkOptions
	newID func() string
}

func NewChunker(opts ChunkOptions) (*Chunker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{opts: opts, newID: uuid.NewString}, nil
}

func (c *Chunker) Options() ChunkOptions {
	return c.opts
}

// Chunk windows every non-empty page, numbering chunks globally from zero.
func (c *Chunker) Chunk(pages []PageContent, docType models.DocumentType) []models.Chunk {
	return c.ChunkFrom(pages, docType, 0)
}

// ChunkFrom is Chunk with global indices starting at start.
func (c *Chunker) ChunkFrom(pages []PageContent, docType models.DocumentType, start int) []models.Chunk {
	var out []models.Chunk
	global := start
	for _, p := range pages {
		if p.IsEmpty() {
			continue
		}
		text := p.Text
		if c.opts.IncludeTables && len(p.Tables) > 0 {
			text = strings.TrimSpace(text + "\n\n" + p.TablesMarkdown())
		}
		for local, w := range windows(strings.Fields(text), c.opts.SizeWords, c.opts.OverlapWords) {
			out = append(out, models.Chunk{
				ID:   c.newID(),
				Text: w,
				Metadata: models.ChunkMetadata{
					DocumentType: docType,
					PageNumber:   p.PageNumber,
					LocalIndex:   local,
					GlobalIndex:  global,
				},
			})
			global++
		}
	}
	return out
}

// windows slides a size-word window with step size-overlap; the last window
// ends exactly at the final word.
func windows(words []string, size, overlap int) []string {
	n := len(words)
	if n == 0 {
		return nil
	}
	var out []string
	for start := 0; ; start = start + size - overlap {
		end := min(start+size, n)
		out = append(out, strings.Join(words[start:end], " "))
		if end == n {
			break
		}
	}
	return out
}

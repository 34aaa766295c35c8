package ingestion

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"booksage-backend/internal/registry"
	"booksage-backend/internal/retrieval"

	"github.com/google/uuid"
)

// Indexer accepts embedded chunk rows for one document.
type Indexer interface {
	InsertChunks(ctx context.Context, doc registry.Document, chunks []string, embeddings [][]float32) error
}

// Pipeline implements session.Ingestor in-process.
type Pipeline struct {
	embedder     retrieval.Embedder
	indexer      Indexer
	chunkSize    int
	chunkOverlap int
}

func NewPipeline(embedder retrieval.Embedder, indexer Indexer, chunkSize, chunkOverlap int) *Pipeline {
	return &Pipeline{
		embedder:     embedder,
		indexer:      indexer,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest extracts and cleans the document text, chunks it, embeds every chunk
// and inserts the rows into the index. PDFs go through go-fitz; anything else
// is treated as plain text.
func (p *Pipeline) Ingest(ctx context.Context, filename string, contents io.Reader) (registry.Document, error) {
	data, err := io.ReadAll(contents)
	if err != nil {
		return registry.Document{}, fmt.Errorf("could not read upload: %w", err)
	}

	var text string
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		text, err = ExtractPDFText(data)
		if err != nil {
			return registry.Document{}, err
		}
	} else {
		text = string(data)
	}

	chunks := ChunkText(CleanText(text), p.chunkSize, p.chunkOverlap)
	if len(chunks) == 0 {
		return registry.Document{}, fmt.Errorf("document %q contains no extractable text", filename)
	}

	embeddings := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return registry.Document{}, fmt.Errorf("could not embed chunk %d: %w", i, err)
		}
		embeddings[i] = embedding
	}

	doc := registry.Document{
		Id:         uuid.NewString(),
		Name:       filename,
		UploadedAt: time.Now(),
	}

	if err := p.indexer.InsertChunks(ctx, doc, chunks, embeddings); err != nil {
		return registry.Document{}, err
	}
	return doc, nil
}

package clients

import (
	"context"
	"fmt"
	"time"

	"booksage-backend/internal/registry"
	"booksage-backend/internal/retrieval"

	"github.com/go-resty/resty/v2"
)

// SearchClient invokes the hybrid-search index as a remote procedure in the
// Supabase REST style: POST /rest/v1/rpc/<name> with the query text, the
// query embedding and a match count, plus an optional equality filter on
// document_id. It also supports inserting chunk rows, which the local
// ingestion pipeline uses.
type SearchClient struct {
	client  *resty.Client
	rpcName string
}

func NewSearchClient(baseURL, apiKey, rpcName string, timeout time.Duration) *SearchClient {
	client := resty.New().SetBaseURL(baseURL).SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("apikey", apiKey)
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &SearchClient{client: client, rpcName: rpcName}
}

type searchRow struct {
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	DocumentId string  `json:"document_id"`
}

func (c *SearchClient) Search(ctx context.Context, query string, embedding []float32, documentId string, limit int) ([]retrieval.SearchResult, error) {
	body := map[string]any{
		"query_text":      query,
		"query_embedding": embedding,
		"match_count":     limit,
	}
	if documentId != "" {
		body["document_id"] = documentId
	}

	var rows []searchRow
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&rows).
		Post("/rest/v1/rpc/" + c.rpcName)
	if err != nil {
		return nil, fmt.Errorf("error calling hybrid search: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("hybrid search returned status %d: %s", res.StatusCode(), res.String())
	}

	// An empty array is a valid result, distinct from an error.
	results := make([]retrieval.SearchResult, len(rows))
	for i, row := range rows {
		results[i] = retrieval.SearchResult{Content: row.Content, Score: row.Score, DocumentId: row.DocumentId}
	}
	return results, nil
}

type chunkRow struct {
	DocumentId string    `json:"document_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
}

// InsertChunks writes embedded chunk rows for one document into the index
// table.
func (c *SearchClient) InsertChunks(ctx context.Context, doc registry.Document, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk and embedding counts differ: %d vs %d", len(chunks), len(embeddings))
	}

	rows := make([]chunkRow, len(chunks))
	for i, chunk := range chunks {
		rows[i] = chunkRow{DocumentId: doc.Id, Title: doc.Name, Content: chunk, Embedding: embeddings[i]}
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		Post("/rest/v1/documents")
	if err != nil {
		return fmt.Errorf("error inserting chunks: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("chunk insert returned status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}

// Package clients holds the HTTP adapters for the external collaborators the
// retrieval pipeline depends on: the embedding service, the hybrid-search
// index, the answer-synthesis service and the ingestion service.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// EmbeddingClient calls the embedding service: text in, vector out. Any
// non-2xx response is a failure.
type EmbeddingClient struct {
	client *resty.Client
}

func NewEmbeddingClient(baseURL string, timeout time.Duration) *EmbeddingClient {
	return &EmbeddingClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var result embedResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Text: text}).
		SetResult(&result).
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("error calling embedding service: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("embedding service returned status %d: %s", res.StatusCode(), res.String())
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty embedding")
	}
	return result.Embedding, nil
}

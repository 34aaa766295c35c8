package clients

import (
	"context"
	"fmt"
	"io"
	"time"

	"booksage-backend/internal/registry"

	"github.com/go-resty/resty/v2"
)

// IngestionClient delegates document processing to the external ingestion
// service via a multipart upload. An "error" field in the response body is a
// failure even when the transport status is 2xx.
type IngestionClient struct {
	client *resty.Client
}

func NewIngestionClient(baseURL string, timeout time.Duration) *IngestionClient {
	return &IngestionClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

type uploadResponse struct {
	Document struct {
		Id   string `json:"id"`
		Name string `json:"name"`
	} `json:"document"`
	Error string `json:"error"`
}

func (c *IngestionClient) Ingest(ctx context.Context, filename string, contents io.Reader) (registry.Document, error) {
	var result uploadResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, contents).
		SetResult(&result).
		Post("/upload")
	if err != nil {
		return registry.Document{}, fmt.Errorf("error calling ingestion service: %w", err)
	}
	if res.IsError() {
		return registry.Document{}, fmt.Errorf("ingestion service returned status %d: %s", res.StatusCode(), res.String())
	}
	if result.Error != "" {
		return registry.Document{}, fmt.Errorf("ingestion service reported error: %s", result.Error)
	}
	if result.Document.Id == "" {
		return registry.Document{}, fmt.Errorf("ingestion service returned no document id")
	}

	return registry.Document{
		Id:         result.Document.Id,
		Name:       result.Document.Name,
		UploadedAt: time.Now(),
	}, nil
}

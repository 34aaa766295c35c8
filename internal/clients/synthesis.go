package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SynthesisClient calls the answer-synthesis service. documentName is sent as
// JSON null when the query was unscoped.
type SynthesisClient struct {
	client *resty.Client
}

func NewSynthesisClient(baseURL string, timeout time.Duration) *SynthesisClient {
	return &SynthesisClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

type synthesisRequest struct {
	Query        string  `json:"query"`
	Context      string  `json:"context"`
	DocumentName *string `json:"documentName"`
}

type synthesisResponse struct {
	Answer string `json:"answer"`
}

func (c *SynthesisClient) Synthesize(ctx context.Context, query, contextText, documentName string) (string, error) {
	req := synthesisRequest{Query: query, Context: contextText}
	if documentName != "" {
		req.DocumentName = &documentName
	}

	var result synthesisResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/generate-answer")
	if err != nil {
		return "", fmt.Errorf("error calling synthesis service: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("synthesis service returned status %d: %s", res.StatusCode(), res.String())
	}
	return result.Answer, nil
}

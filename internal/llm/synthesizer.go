// Package llm provides a Synthesizer that calls the model directly instead of
// going through a separate answer-synthesis service.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type Synthesizer struct {
	client *openai.LLM
}

func NewSynthesizer(model, apiKey string) (*Synthesizer, error) {
	client, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("could not create LLM client: %w", err)
	}
	return &Synthesizer{client: client}, nil
}

func (s *Synthesizer) Synthesize(ctx context.Context, query, contextText, documentName string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(query, contextText, documentName)),
	}

	resp, err := s.client.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("error calling LLM: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return resp.Choices[0].Content, nil
}

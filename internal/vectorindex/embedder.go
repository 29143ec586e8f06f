// Copyright (c) 2026 SQLSage. All rights reserved.

package vectorindex

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Dimensions is the embedding width produced by every [Embedder]
// implementation in this package. It must match the width pgvector's
// `embedding` column was created with.
const Dimensions = 1536

// Embedder turns text into a fixed-width vector. C5 embeds table/column/
// relationship summaries at schema re-index time and user query text at
// search time, so implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// openAIEmbedder is the concrete, swappable default backend.
type openAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder builds an [Embedder] backed by the OpenAI embeddings API.
func NewOpenAIEmbedder(apiKey string) Embedder {
	return &openAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.SmallEmbedding3,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("vectorindex: embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}

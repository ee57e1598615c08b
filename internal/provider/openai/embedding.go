package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/robalobadob/linkdle/internal/provider"
)

var errNoEmbeddingClient = errors.New("embeddings not configured")

// Embed returns the embedding vector for word.
func (c *Client) Embed(ctx context.Context, word string) ([]float32, error) {
	if c.embed == nil {
		return nil, provider.Wrap(name, "embed", errNoEmbeddingClient)
	}

	body := openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{word}},
		Model:      c.embeddingModel,
		Dimensions: openai.Int(c.dimensions),
	}
	response, err := c.embed.Embeddings.New(ctx, body)
	if err != nil {
		return nil, provider.Wrap(name, "embed", err)
	}
	if len(response.Data) != 1 {
		return nil, provider.Wrap(name, "embed", fmt.Errorf("unexpected embedding result size: got %d want 1", len(response.Data)))
	}

	src := response.Data[0].Embedding
	vec := make([]float32, len(src))
	for i, v := range src {
		vec[i] = float32(v)
	}
	return vec, nil
}

// internal/provider/ollama/ollama.go
//
// Local embedding backend using an Ollama server's /api/embed endpoint.
// Concurrent requests are capped with a weighted semaphore.

package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/robalobadob/linkdle/internal/provider"
)

// DefaultBaseURL is Ollama's default listen address.
const DefaultBaseURL = "http://localhost:11434"

const name = "ollama"

// Client implements provider.Embedder.
type Client struct {
	model   string
	client  *api.Client
	reqLock *semaphore.Weighted
}

// Params configures a Client.
type Params struct {
	BaseURL               string
	Model                 string
	MaxConcurrentRequests int64
	HTTPClient            *http.Client
}

// New creates a client for the Ollama server at params.BaseURL.
func New(params Params) (*Client, error) {
	if params.BaseURL == "" {
		params.BaseURL = DefaultBaseURL
	}
	if params.Model == "" {
		return nil, errors.New("ollama: embedding model is required")
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 4
	}
	if params.HTTPClient == nil {
		params.HTTPClient = http.DefaultClient
	}
	u, err := url.Parse(params.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		model:   params.Model,
		client:  api.NewClient(u, params.HTTPClient),
		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),
	}, nil
}

// Embed returns the embedding vector for word.
func (c *Client) Embed(ctx context.Context, word string) ([]float32, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, provider.Wrap(name, "embed", err)
	}
	defer c.reqLock.Release(1)

	res, err := c.client.Embed(ctx, &api.EmbedRequest{Model: c.model, Input: word})
	if err != nil {
		return nil, provider.Wrap(name, "embed", err)
	}
	if len(res.Embeddings) == 0 {
		return nil, provider.Wrap(name, "embed", errors.New("empty embedding response"))
	}
	return res.Embeddings[0], nil
}

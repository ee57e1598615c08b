// internal/provider/openai/openai.go
//
// OpenAI-compatible client implementing both provider.Embedder and
// provider.Generator. Separate SDK clients are kept for embeddings and chat so
// they can point at different endpoints/keys (e.g. a local gateway for chat).

package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"
)

const name = "openai"

// Defaults used when Params leaves a field empty.
const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o-mini"
	DefaultDimensions     = 384
)

// Client talks to the embeddings and chat completions endpoints.
type Client struct {
	embeddingModel string
	chatModel      string
	dimensions     int64

	embed *openai.Client
	chat  *openai.Client
	log   zerolog.Logger
}

// Params configures a Client. An empty key disables that half of the client.
type Params struct {
	EmbeddingModel string
	ChatModel      string
	Dimensions     int

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	// MaxRetries overrides the SDK's retry count when >= 0.
	MaxRetries int
	Logger     zerolog.Logger
}

// New builds a Client from params.
func New(params Params) *Client {
	if params.EmbeddingModel == "" {
		params.EmbeddingModel = DefaultEmbeddingModel
	}
	if params.ChatModel == "" {
		params.ChatModel = DefaultChatModel
	}
	if params.Dimensions <= 0 {
		params.Dimensions = DefaultDimensions
	}
	return &Client{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,
		dimensions:     int64(params.Dimensions),
		embed:          newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey, params.MaxRetries),
		chat:           newOpenaiClient(params.ChatURL, params.ChatKey, params.MaxRetries),
		log:            params.Logger.With().Str("provider", name).Logger(),
	}
}

// CanEmbed reports whether an embeddings key was configured.
func (c *Client) CanEmbed() bool { return c.embed != nil }

// CanChat reports whether a chat key was configured.
func (c *Client) CanChat() bool { return c.chat != nil }

func newOpenaiClient(baseURL, apiKey string, maxRetries int) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	if maxRetries >= 0 {
		options = append(options, option.WithMaxRetries(maxRetries))
	}
	client := openai.NewClient(options...)
	return &client
}

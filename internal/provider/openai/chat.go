package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/robalobadob/linkdle/internal/provider"
)

var errNoChatClient = errors.New("chat not configured")

const systemPrompt = "You are the referee of a word-association puzzle. " +
	"Players build chains of single English words where each word must be meaningfully connected to the previous one. " +
	"Answer strictly in the requested JSON format."

// Judge asks the model whether a and b are connected. Unparseable model
// output is reported as an invalid connection.
func (c *Client) Judge(ctx context.Context, a, b string) (*provider.Judgement, error) {
	prompt := fmt.Sprintf(
		"Are the words %q and %q meaningfully connected? "+
			"Consider synonyms, antonyms, shared context, figurative language and common associations. "+
			"Rate creativity from 0 (obvious) to 20 (surprising but fair).", a, b)

	var out provider.Judgement
	err := c.completeWithFormat(ctx, "word_link_judgement", "Verdict on whether two words are connected", prompt, &out)
	if errors.Is(err, errUnparseable) {
		return &provider.Judgement{}, nil
	}
	if err != nil {
		return nil, provider.Wrap(name, "judge", err)
	}
	return &out, nil
}

// Relationships asks the model for words related to word. Unparseable model
// output is reported as an empty set.
func (c *Client) Relationships(ctx context.Context, word string) (*provider.RelationshipSet, error) {
	prompt := fmt.Sprintf(
		"List single English words related to %q. "+
			"strict: synonyms, antonyms and contextual words. "+
			"creative: figurative uses and looser associations. Use lowercase, up to ten words per list.", word)

	var out provider.RelationshipSet
	err := c.completeWithFormat(ctx, "word_relationships", "Words related to a headword", prompt, &out)
	if errors.Is(err, errUnparseable) {
		return &provider.RelationshipSet{}, nil
	}
	if err != nil {
		return nil, provider.Wrap(name, "relationships", err)
	}
	return &out, nil
}

// completeWithFormat sends prompt with a strict JSON schema derived from out
// and decodes the reply into out.
func (c *Client) completeWithFormat(ctx context.Context, schemaName, description, prompt string, out any) error {
	if c.chat == nil {
		return errNoChatClient
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        schemaName,
		Description: openai.String(description),
		Schema:      generateSchema(out),
		Strict:      openai.Bool(true),
	}
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.chatModel),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
	}

	response, err := c.chat.Chat.Completions.New(ctx, body)
	if err != nil {
		return err
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response from model")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		c.log.Debug().Str("finish_reason", string(response.Choices[0].FinishReason)).Msg("empty model response")
		return errUnparseable
	}
	if err := unmarshalFlexible(message, out); err != nil {
		c.log.Debug().Err(err).Msg("unparseable model response")
		return errUnparseable
	}
	return nil
}

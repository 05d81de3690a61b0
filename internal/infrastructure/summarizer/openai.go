// Package summarizer implements the event enrichment collaborator against
// any OpenAI-compatible chat completion endpoint.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"agentsight/internal/bootstrap/config"
	"agentsight/internal/errs"
	"agentsight/internal/ports"
)

// Payloads are truncated before prompting; an event payload can carry
// arbitrarily large tool output.
const maxPayloadPromptBytes = 4000

const systemPrompt = "You summarize lifecycle events from coding-agent sessions " +
	"for an observability dashboard. Reply with one short sentence describing " +
	"what happened. No markdown, no quotes."

type OpenAIClient struct {
	client openai.Client
	model  string
}

var _ ports.Summarizer = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg config.SummarizerConfig) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Summarize(ctx context.Context, hookEventType string, payload json.RawMessage) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	doc := string(payload)
	if len(doc) > maxPayloadPromptBytes {
		doc = doc[:maxPayloadPromptBytes]
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Event type: " + hookEventType + "\nPayload: " + doc),
		},
	})
	if err != nil {
		return "", errs.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("chat completion returned empty summary")
	}
	return summary, nil
}

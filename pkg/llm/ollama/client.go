package ollama

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/artem13815/feedback/pkg/llm"
)

// generator is the slice of langchaingo's model API we rely on.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client runs completions against a local Ollama server through langchaingo.
type Client struct {
	model string
	llm   generator
}

func New(serverURL, model string) (*Client, error) {
	l, err := lcollama.New(lcollama.WithModel(model), lcollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("failed to init ollama: %w", err)
	}
	return &Client{model: model, llm: l}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, req.System),
		llms.TextParts(schema.ChatMessageTypeHuman, req.User),
	}
	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	res, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return llm.ChatResponse{}, err
	}
	out := llm.ChatResponse{Model: c.model, Choices: make([]llm.Choice, 0, len(res.Choices))}
	for i, ch := range res.Choices {
		if ch == nil {
			continue
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        i,
			Text:         ch.Content,
			FinishReason: ch.StopReason,
		})
	}
	return out, nil
}

func (c *Client) Name() string { return "ollama" }

// Check always passes: the local server needs no credential.
func (c *Client) Check(_ context.Context) error { return nil }

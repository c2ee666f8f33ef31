package main

import (
	"fmt"
	"strings"

	"github.com/artem13815/feedback/pkg/config"
	"github.com/artem13815/feedback/pkg/health"
	"github.com/artem13815/feedback/pkg/llm"
	"github.com/artem13815/feedback/pkg/llm/ollama"
	"github.com/artem13815/feedback/pkg/llm/openai"
)

// provider is a chat model that can also report its own readiness.
type provider interface {
	llm.ChatModel
	health.Checker
}

func newProvider(cfg config.Config) (provider, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "":
		return openai.New(
			cfg.OpenAIAPIKey,
			cfg.OpenAIBaseURL,
			cfg.OpenAIModel,
			cfg.OpenAIAppTitle,
			cfg.OpenAIReferer,
		), nil
	case "ollama":
		c, err := ollama.New(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s (supported: openai, ollama)", cfg.LLMProvider)
	}
}

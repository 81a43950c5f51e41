package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/MoexGo/consts"
	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/resilience"
)

// Client wraps the chat model behind the one text-generation operation the
// pipeline uses. Every call goes through the retry and monitoring
// middleware, so stages only ever see the final outcome.
type Client struct {
	model    model.BaseChatModel
	monitor  *monitor.Monitor
	retryCfg *resilience.RetryConfig
}

// NewChatModel builds the configured chat model. "deepseek" uses the
// native client; "openai" targets any DeepSeek-compatible endpoint via the
// configured base URL.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	switch cfg.LLMProvider {
	case "openai":
		maxTokens := cfg.MaxTokens
		baseURL := strings.TrimSuffix(cfg.DeepSeekBaseURL, "/") + "/v1"
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   baseURL,
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.DeepSeekModel,
			MaxTokens: &maxTokens,
			Timeout:   cfg.APITimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai-compatible model: %w", err)
		}
		return cm, nil
	default:
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.DeepSeekModel,
			BaseURL:   cfg.DeepSeekBaseURL,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.APITimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek model: %w", err)
		}
		return cm, nil
	}
}

func NewClient(cm model.BaseChatModel, mon *monitor.Monitor, cfg *config.Config) *Client {
	return &Client{
		model:   cm,
		monitor: mon,
		retryCfg: &resilience.RetryConfig{
			MaxRetries: cfg.MaxRetries,
			Delay:      cfg.RetryDelay,
		},
	}
}

// chatTemplate feeds prompts through as template values, so payload text
// with braces can never be misparsed as a placeholder.
var chatTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage("{system_prompt}"),
	schema.UserMessage("{user_input}"),
)

// GenerateText runs one summarization call. Transport-level failures are
// retried; a cancelled caller context is not.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msgs, err := chatTemplate.Format(ctx, map[string]any{
		"system_prompt": systemPrompt,
		"user_input":    userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}

	var content string
	err = resilience.Call(c.retryCfg, c.monitor, consts.OpDeepSeek, func() error {
		out, err := c.model.Generate(ctx, msgs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return resilience.Transient(err)
		}
		if out == nil || out.Content == "" {
			return fmt.Errorf("model returned an empty message")
		}
		content = out.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultMaxTokens bounds generation length when a request does not set one.
const DefaultMaxTokens = 500

// Config is the model configuration resolved once at startup.
type Config struct {
	BaseURL   string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// OpenRouterProvider implements Provider for OpenRouter's OpenAI-compatible API.
type OpenRouterProvider struct {
	client openai.Client
	cfg    Config
}

// NewOpenRouterProvider creates a provider bound to cfg. Retries are disabled:
// every Chat call is exactly one HTTP request.
func NewOpenRouterProvider(cfg Config) *OpenRouterProvider {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenRouterProvider{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.cfg.APIKey == "" {
		return nil, &ModelRequestError{Provider: p.Name(), Model: req.Model, Err: ErrMissingAPIKey}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	promptChars := 0
	for _, m := range req.Messages {
		promptChars += len(m.Content)
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(req.Model),
		Messages:  msgs,
		MaxTokens: openai.Int(int64(maxTokens)),
	}

	var reqOpts []option.RequestOption
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openai.String(req.Schema.Description),
					Strict:      openai.Bool(req.Schema.Strict),
					Schema:      req.Schema.Schema,
				},
			},
		}
		// OpenRouter only routes to providers that honour response_format.
		reqOpts = append(reqOpts, option.WithJSONSet("provider", map[string]any{"require_parameters": true}))
	}

	slog.Info("OpenRouter request starting", "model", req.Model, "prompt_chars", promptChars, "structured", req.Schema != nil)

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		slog.Error("OpenRouter request failed", "model", req.Model, "status", status, "elapsed", time.Since(start), "error", err)
		return nil, &ModelRequestError{Provider: p.Name(), Model: req.Model, StatusCode: status, Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &ModelRequestError{Provider: p.Name(), Model: req.Model, Err: fmt.Errorf("response contained no choices")}
	}
	content := resp.Choices[0].Message.Content
	tokensUsed := int(resp.Usage.TotalTokens)

	slog.Info("OpenRouter request completed", "model", req.Model, "elapsed", time.Since(start), "tokens", tokensUsed, "response_chars", len(content))

	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return &ChatResponse{
		Content:    content,
		TokensUsed: tokensUsed,
		Model:      model,
		Provider:   p.Name(),
	}, nil
}

package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/thinkscotty/fakenews/internal/models"
)

// Operation names recorded with each model call.
const (
	OpSummary           = "summary"
	OpStructuredSummary = "structured_summary"
	OpFakeNews          = "fake_news"
	OpCompletion        = "completion"
)

// Client is the main AI entry point. It builds prompts, sends them through a
// Provider and hands back the model output.
type Client struct {
	provider     Provider
	defaultModel string
	recorder     UsageRecorder
}

// NewClient creates a client that uses defaultModel unless a call overrides it.
func NewClient(provider Provider, defaultModel string) *Client {
	return &Client{provider: provider, defaultModel: defaultModel}
}

// SetRecorder attaches a usage recorder. Pass nil to disable recording.
func (c *Client) SetRecorder(r UsageRecorder) {
	c.recorder = r
}

// CallOption adjusts a single model call.
type CallOption func(*callOptions)

type callOptions struct {
	model     string
	maxTokens int
	operation string
}

// WithModel overrides the model for one call.
func WithModel(model string) CallOption {
	return func(o *callOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithMaxTokens overrides the generation limit for one call.
func WithMaxTokens(n int) CallOption {
	return func(o *callOptions) { o.maxTokens = n }
}

// WithOperation names the call in the usage ledger.
func WithOperation(op string) CallOption {
	return func(o *callOptions) { o.operation = op }
}

func (c *Client) resolve(opts []CallOption, op string) callOptions {
	o := callOptions{model: c.defaultModel, operation: op}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Complete sends prompt as a single user message and returns the model's
// text verbatim.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	o := c.resolve(opts, OpCompletion)
	return c.chat(ctx, prompt, o, nil)
}

// CompleteStructured is Complete with a strict JSON schema attached. The raw
// response text is returned unparsed.
func (c *Client) CompleteStructured(ctx context.Context, prompt string, schema JSONSchema, opts ...CallOption) (TopicsJSON, error) {
	o := c.resolve(opts, OpCompletion)
	out, err := c.chat(ctx, prompt, o, &schema)
	return TopicsJSON(out), err
}

// Summarize asks for 3-5 short topic sentences about the text and returns the
// answer with surrounding whitespace trimmed.
func (c *Client) Summarize(ctx context.Context, text string, opts ...CallOption) (string, error) {
	o := c.resolve(opts, OpSummary)
	out, err := c.chat(ctx, BuildSummaryPrompt(text), o, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SummarizeStructured asks for the same summary as a JSON array of
// main_entity/news_sentence objects constrained by TopicsSchema.
func (c *Client) SummarizeStructured(ctx context.Context, text string, opts ...CallOption) (TopicsJSON, error) {
	o := c.resolve(opts, OpStructuredSummary)
	schema := TopicsSchema()
	out, err := c.chat(ctx, BuildStructuredSummaryPrompt(text), o, &schema)
	if err != nil {
		return "", err
	}
	return TopicsJSON(out), nil
}

// GenerateFakeNews asks for a ~50 word article contradicting the text.
// Word count and contradiction are requested in the prompt only.
func (c *Client) GenerateFakeNews(ctx context.Context, text string, opts ...CallOption) (string, error) {
	o := c.resolve(opts, OpFakeNews)
	return c.chat(ctx, BuildFakeNewsPrompt(text), o, nil)
}

func (c *Client) chat(ctx context.Context, prompt string, o callOptions, schema *JSONSchema) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.provider.Chat(ctx, ChatRequest{
		Messages:  []Message{{Role: "user", Content: prompt}},
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Schema:    schema,
	})

	call := models.ModelCall{
		RunID:       RunIDFromContext(ctx),
		Operation:   o.operation,
		Provider:    c.provider.Name(),
		Model:       o.model,
		PromptChars: len(prompt),
	}
	if err != nil {
		call.ErrorMessage = err.Error()
		c.record(call)
		return "", err
	}

	if resp.Model != "" {
		call.Model = resp.Model
	}
	call.ResponseChars = len(resp.Content)
	call.TokensUsed = resp.TokensUsed
	c.record(call)

	return resp.Content, nil
}

func (c *Client) record(call models.ModelCall) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.LogModelCall(call); err != nil {
		slog.Warn("Failed to record model call", "operation", call.Operation, "error", err)
	}
}

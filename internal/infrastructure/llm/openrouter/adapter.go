package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/infrastructure/prompts"

	"github.com/sashabaranov/go-openai"
)

var _ output.InstructionRewriter = (*Rewriter)(nil)

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrUnsupported   = errors.New("model could not express the instruction")
)

// Rewriter asks a chat model to restate an instruction in the strict grammar.
type Rewriter struct {
	client      *openai.Client
	model       string
	temperature float32
	inventory   output.ElementInventory
	logger      output.LoggerPort
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	// Inventory is optional; when set, element names are offered to the model.
	Inventory output.ElementInventory
	Logger    output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.logger != nil {
		var bodyBytes []byte
		if req.Body != nil {
			bodyBytes, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		var requestData map[string]interface{}
		if len(bodyBytes) > 0 {
			_ = json.Unmarshal(bodyBytes, &requestData)
		}

		t.logger.Debug("HTTP Request",
			"method", req.Method,
			"url", req.URL.String(),
			"body", requestData,
		)
	}

	resp, err := t.base.RoundTrip(req)

	if t.logger != nil && resp != nil {
		t.logger.Debug("HTTP Response",
			"status", resp.Status,
			"statusCode", resp.StatusCode,
		)
	}

	return resp, err
}

func NewRewriter(cfg Config) *Rewriter {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &Rewriter{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		inventory:   cfg.Inventory,
		logger:      cfg.Logger,
	}
}

func (r *Rewriter) Rewrite(ctx context.Context, instruction string) (string, error) {
	system, err := prompts.GenerateRewritePrompt(prompts.RewritePrompt, r.elementNames(ctx))
	if err != nil {
		return "", err
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
		Temperature: r.temperature,
		MaxTokens:   100,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	command := firstLine(resp.Choices[0].Message.Content)
	switch {
	case command == "":
		return "", ErrEmptyResponse
	case strings.EqualFold(command, prompts.Unsupported):
		return "", ErrUnsupported
	}

	if r.logger != nil {
		r.logger.Debug("Instruction rewritten", "instruction", instruction, "command", command)
	}
	return command, nil
}

func (r *Rewriter) elementNames(ctx context.Context) []string {
	if r.inventory == nil {
		return nil
	}
	elements, err := r.inventory.Elements(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("Failed to list elements for rewrite prompt", "error", err)
		}
		return nil
	}

	names := make([]string, 0, len(elements))
	for _, el := range elements {
		switch {
		case el.Registered != nil:
			names = append(names, el.Registered.Label)
		case el.Discovered != nil && el.Discovered.State.Visible:
			names = append(names, el.Discovered.AccessibleName)
		}
	}
	return names
}

// firstLine strips code fences and surrounding whitespace and keeps the
// first non-empty line.
func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "`"))
		if line != "" {
			return line
		}
	}
	return ""
}

package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"promptvault/internal/domain"
)

const defaultMaxTokens = 4096

// Enhancer rewrites prompt text through the Anthropic messages API. It
// never touches stored prompts; applying a result is a separate step.
type Enhancer struct {
	client  *anthropic.Client
	presets *PresetRegistry
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEnhancer creates an enhancer with the given API key and model.
func NewEnhancer(apiKey, model string, timeout time.Duration, presets *PresetRegistry, logger *slog.Logger) (*Enhancer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Enhancer{
		client:  &client,
		presets: presets,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Presets exposes the instruction presets for the HTTP layer
func (e *Enhancer) Presets() *PresetRegistry {
	return e.presets
}

// Enhance returns an improved version of text. A nil instruction uses
// the default preset. Provider failures and timeouts come back as a
// domain.EnhancementError so the HTTP layer maps them to 502.
func (e *Enhancer) Enhance(ctx context.Context, text string, instruction *string) (string, error) {
	system := e.presets.Default().Instruction
	if instruction != nil && strings.TrimSpace(*instruction) != "" {
		system = *instruction
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: defaultMaxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", &domain.EnhancementError{Cause: err}
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	enhanced := strings.TrimSpace(sb.String())
	if enhanced == "" {
		return "", &domain.EnhancementError{Cause: fmt.Errorf("empty response from model %s", e.model)}
	}

	e.logger.Info("prompt enhanced",
		"model", e.model,
		"input_chars", len(text),
		"output_chars", len(enhanced),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return enhanced, nil
}

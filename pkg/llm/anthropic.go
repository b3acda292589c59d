package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/pkg/errors"
)

// ClaudeModel is the default model for Anthropic summaries.
const ClaudeModel = "claude-sonnet-4-5-20250929"

// AnthropicWriter writes summative comments with Claude.
type AnthropicWriter struct {
	client anthropic.Client
	model  string
}

// NewAnthropicWriter creates a summary writer backed by the Anthropic API.
// baseURL is only set in tests.
func NewAnthropicWriter(apiKey, model, baseURL string) (writer *AnthropicWriter, err error) {
	if apiKey == "" {
		err = errors.New("ANTHROPIC_API_KEY is required for the anthropic summary provider")
		return writer, err
	}

	if model == "" {
		model = ClaudeModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	writer = &AnthropicWriter{
		client: anthropic.NewClient(opts...),
		model:  model,
	}

	return writer, err
}

// Summarize implements assessment.SummaryWriter.
func (w *AnthropicWriter) Summarize(ctx context.Context, req assessment.SummaryRequest) (comment string, err error) {
	var msg *anthropic.Message
	msg, err = w.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(w.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(req))),
		},
	})
	if err != nil {
		err = errors.Wrap(err, "anthropic summary request failed")
		return comment, err
	}

	var texts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}

	if len(texts) == 0 {
		err = errors.New("no content in Claude response")
		return comment, err
	}

	comment = normalizeSummary(strings.Join(texts, ""))

	return comment, err
}

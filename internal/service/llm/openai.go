// Package llm adapts an external chat-completion API to the Summarizer
// contract: rephrase the supplied pack, add nothing.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"marketpulse/pkg/config"
)

const systemPrompt = `You are a market desk assistant writing a morning brief.
Rewrite the user's data pack into a short readable brief with exactly these sections:
MARKET STATE, WHAT MATTERS, RISKS, SETUP, NOTABLE HEADLINES.
Strict rules:
- Use ONLY facts present in the pack. Do not add numbers, names, events or context that are not in the pack.
- If a section has no supporting facts in the pack, write "Nothing notable." under it.
- Plain text only, no markdown.`

// requiredSections must all appear in a completion for it to be accepted.
// A response missing one is treated as a failed call so the caller falls
// back to the deterministic template.
var requiredSections = []string{
	"MARKET STATE",
	"WHAT MATTERS",
	"RISKS",
	"SETUP",
	"NOTABLE HEADLINES",
}

// OpenAISummarizer implements service.Summarizer on the OpenAI chat API.
type OpenAISummarizer struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

// NewOpenAISummarizer creates a summarizer from config. Returns nil when no
// API key is configured; callers treat a nil summarizer as absent.
func NewOpenAISummarizer(cfg *config.Config) *OpenAISummarizer {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	return &OpenAISummarizer{
		client:      openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey)),
		model:       cfg.OpenAI.Model,
		maxTokens:   int64(cfg.OpenAI.MaxTokens),
		temperature: cfg.OpenAI.Temperature,
		timeout:     cfg.OpenAI.Timeout,
	}
}

// Summarize sends the pack through the chat API under the extractive
// contract and validates the response shape.
func (s *OpenAISummarizer) Summarize(ctx context.Context, pack string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(pack),
		},
		MaxTokens:   openai.Int(s.maxTokens),
		Temperature: openai.Float(s.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	brief := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := validateBrief(brief); err != nil {
		return "", err
	}
	return brief, nil
}

func validateBrief(brief string) error {
	if brief == "" {
		return fmt.Errorf("empty brief")
	}
	for _, section := range requiredSections {
		if !strings.Contains(brief, section) {
			return fmt.Errorf("brief missing section %q", section)
		}
	}
	return nil
}

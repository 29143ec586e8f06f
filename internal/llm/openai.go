// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"context"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sqlsage/sqlsage/internal/pattern"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// openAILanguageModel is the concrete, swappable default [LanguageModel]
// backend. Both of its methods are first-class-fallback: a model error,
// a parse failure, or a timeout never bubbles up as an error — it is
// absorbed into the deterministic branch spec.md §4.8 describes.
type openAILanguageModel struct {
	client *openai.Client
	cfg    config.LMConfig
	logger *slog.Logger
}

// NewOpenAILanguageModel builds a [LanguageModel] backed by OpenAI chat
// completions, configured per cfg (model names, temperatures, token
// budgets, and timeout — spec.md §4.8's determinism settings).
func NewOpenAILanguageModel(cfg config.LMConfig, logger *slog.Logger) LanguageModel {
	return &openAILanguageModel{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		logger: logger,
	}
}

func (m *openAILanguageModel) Understand(ctx context.Context, text string, adaptiveContext string) (querymodel.Intent, error) {
	enrichments := pattern.Detect(text)

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	resp, err := m.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       m.cfg.ModelUnderstand,
		Temperature: float32(m.cfg.TemperatureUnderstand),
		TopP:        float32(m.cfg.TopP),
		MaxTokens:   m.cfg.MaxTokensUnderstand,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: understandSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUnderstandPrompt(text, adaptiveContext)},
		},
	})

	var intent querymodel.Intent
	if err != nil || len(resp.Choices) == 0 {
		if err != nil {
			m.logger.Warn("llm: understand call failed, using rule-based fallback", "error", err)
		}
		intent = fallbackUnderstand(enrichments.Normalized.ASCII)
	} else if parsed, ok := extractIntentJSON(resp.Choices[0].Message.Content); ok {
		intent = parsed
	} else {
		m.logger.Warn("llm: understand response failed JSON extraction, using rule-based fallback")
		intent = fallbackUnderstand(enrichments.Normalized.ASCII)
	}

	return overlayEnrichments(intent, enrichments), nil
}

// overlayEnrichments layers C7's pure detections onto an Intent's Filters,
// per spec.md §4.8's "post-processing always applies C7 enrichments".
func overlayEnrichments(intent querymodel.Intent, e pattern.Enrichments) querymodel.Intent {
	if e.Name.Found {
		intent.Filters = append(intent.Filters, "name: "+e.Name.Name)
	}
	if e.Date.Found {
		intent.Filters = append(intent.Filters, "date: "+e.Date.Predicate)
	}
	return intent
}

func (m *openAILanguageModel) GenerateSQL(ctx context.Context, intent querymodel.Intent, schemaContext string, adaptiveContext string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	resp, err := m.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       m.cfg.ModelSQL,
		Temperature: float32(m.cfg.TemperatureSQL),
		TopP:        float32(m.cfg.TopP),
		MaxTokens:   m.cfg.MaxTokensSQL,
		Stop:        []string{";", "\n\n", "Schema:", "Task:", "Write"},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generateSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildGeneratePrompt(intent, schemaContext, adaptiveContext)},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		if err != nil {
			m.logger.Warn("llm: generate_sql call failed, caller should use template fallback", "error", err)
		}
		return "", nil
	}

	cleaned := CleanSQL(resp.Choices[0].Message.Content)
	if cleaned == "" || !strings.Contains(strings.ToUpper(cleaned), "SELECT") {
		return "", nil
	}
	return cleaned, nil
}

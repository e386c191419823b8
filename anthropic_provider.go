package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/gateway"
)

var (
	errAIDisabled   = errors.New("category suggestions need anthropic_api_key")
	errNoCategories = errors.New("no categories to choose from")
)

// AnthropicProvider implements AIProvider for Anthropic's Claude API.
type AnthropicProvider struct {
	client *anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic AI provider.
func NewAnthropicProvider(apiKey string, opts ...option.RequestOption) *AnthropicProvider {
	client := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	return &AnthropicProvider{
		client: &client,
	}
}

// RecommendCategory implements AIProvider interface.
func (p *AnthropicProvider) RecommendCategory(
	ctx context.Context,
	expense gateway.NewTransaction,
	categories []gateway.Category,
) (*CategoryRecommendation, error) {
	prompt := buildPrompt(expense, categories)

	log.Debug("sending categorization request to Anthropic", "description", expense.Description)

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     "claude-3-5-haiku-latest",
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var responseText string
	if len(response.Content) > 0 {
		responseText = response.Content[0].Text
	}

	if responseText == "" {
		return nil, errors.New("empty response from Anthropic API")
	}

	recommendation, err := parseRecommendation(responseText, categories)
	if err != nil {
		log.Error("failed to parse Anthropic response", "error", err, "response", responseText)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return recommendation, nil
}

// buildPrompt constructs the prompt for category recommendation.
func buildPrompt(expense gateway.NewTransaction, categories []gateway.Category) string {
	return fmt.Sprintf(`You sort personal expenses into spending categories.
Pick the most appropriate category for the expense below from the available options.

%s

%s

Respond with ONLY a JSON object in this exact format:
{
  "category_id": <number>,
  "confidence": <number between 0-100>,
  "reasoning": "<brief explanation>"
}

Guidelines:
- The description may be in English or Spanish
- Confidence should reflect how certain you are (100 = very certain, 0 = guessing)
- Keep reasoning to one sentence
- If nothing fits well, choose the closest match and set confidence low`,
		formatExpenseForAI(expense), formatCategoriesForAI(categories))
}

// parseRecommendation extracts the JSON object from the model's reply and
// checks the category against the ones offered.
func parseRecommendation(response string, categories []gateway.Category) (*CategoryRecommendation, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response: %s", response)
	}

	jsonStr := response[start : end+1]

	var result struct {
		CategoryID json.RawMessage `json:"category_id"`
		Confidence float64         `json:"confidence"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (original: %s)", err, jsonStr)
	}

	// the id sometimes comes back quoted
	rawID := strings.Trim(string(result.CategoryID), `"`)
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid category_id format: %s", rawID)
	}

	var categoryName string
	for _, cat := range categories {
		if cat.ID == id {
			categoryName = cat.Name
			break
		}
	}
	if categoryName == "" {
		return nil, fmt.Errorf("recommended category ID %d not found in available categories", id)
	}

	return &CategoryRecommendation{
		CategoryID:   id,
		CategoryName: categoryName,
		Confidence:   min(max(result.Confidence, 0), maxConfidenceScore),
		Reasoning:    result.Reasoning,
	}, nil
}

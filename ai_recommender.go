package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/gateway"
)

// AIProvider suggests a category for an expense that does not have one yet.
type AIProvider interface {
	RecommendCategory(
		ctx context.Context,
		expense gateway.NewTransaction,
		categories []gateway.Category,
	) (*CategoryRecommendation, error)
}

// CategoryRecommendation represents an AI recommendation for an expense category.
type CategoryRecommendation struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Confidence   float64 `json:"confidence"` // 0-100 confidence score
	Reasoning    string  `json:"reasoning"`
}

// AIRecommendationMsg is sent when a suggestion for Expense is ready.
type AIRecommendationMsg struct {
	Recommendation *CategoryRecommendation
	Error          error
	Expense        gateway.NewTransaction
}

// AIRecommender manages AI-powered category recommendations.
type AIRecommender struct {
	provider AIProvider
	enabled  bool
}

// NewAIRecommender creates a new AI recommender with the given provider. A
// nil provider gives a disabled recommender.
func NewAIRecommender(provider AIProvider) *AIRecommender {
	return &AIRecommender{
		provider: provider,
		enabled:  provider != nil,
	}
}

// IsEnabled returns true if AI recommendations are available.
func (r *AIRecommender) IsEnabled() bool {
	return r != nil && r.enabled
}

// Suggest asks the provider for a category, bounded by aiRecommendationTimeout.
func (r *AIRecommender) Suggest(
	ctx context.Context,
	expense gateway.NewTransaction,
	categories []gateway.Category,
) (*CategoryRecommendation, error) {
	if !r.IsEnabled() {
		return nil, errAIDisabled
	}
	if len(categories) == 0 {
		return nil, errNoCategories
	}

	ctx, cancel := context.WithTimeout(ctx, aiRecommendationTimeout)
	defer cancel()

	rec, err := r.provider.RecommendCategory(ctx, expense, categories)
	if err != nil {
		log.Error("category suggestion failed", "error", err, "description", expense.Description)
		return nil, err
	}

	log.Debug("category suggestion succeeded",
		"description", expense.Description,
		"category", rec.CategoryName,
		"confidence", rec.Confidence)
	return rec, nil
}

// RecommendCategory creates a tea.Cmd that suggests a category for expense.
func (r *AIRecommender) RecommendCategory(expense gateway.NewTransaction, categories []gateway.Category) tea.Cmd {
	if !r.IsEnabled() {
		log.Debug("AIRecommender.RecommendCategory: not enabled")
		return nil
	}

	return func() tea.Msg {
		rec, err := r.Suggest(context.Background(), expense, categories)
		return AIRecommendationMsg{Recommendation: rec, Error: err, Expense: expense}
	}
}

// formatExpenseForAI formats expense data for AI analysis.
func formatExpenseForAI(expense gateway.NewTransaction) string {
	amount := "-"
	if expense.Amount != nil {
		amount = expense.Amount.Display()
	}

	date := "-"
	if !expense.Date.IsZero() {
		date = expense.Date.Format("2006-01-02")
	}

	return fmt.Sprintf(`Expense Details:
- Description: %s
- Amount: %s
- Date: %s`,
		expense.Description,
		amount,
		date,
	)
}

// formatCategoriesForAI formats available categories for AI analysis.
func formatCategoriesForAI(categories []gateway.Category) string {
	var sb strings.Builder
	sb.WriteString("Available Categories:\n")
	for _, cat := range categories {
		fmt.Fprintf(&sb, "- ID: %d, Name: %s\n", cat.ID, cat.Name)
	}
	return sb.String()
}

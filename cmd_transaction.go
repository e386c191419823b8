package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Rshep3087/ahorrista/gateway"
)

func newExpensesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expense commands",
		Long:  `Commands for adding and removing expenses.`,
	}

	cmd.AddCommand(newExpensesAddCmd(a), newExpensesDeleteCmd(a))
	return cmd
}

func newExpensesAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Long: `Record a new expense. Without --category a category is suggested from
the description when anthropic_api_key is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return expensesAddRun(cmd, a, a.ai)
		},
	}

	cmd.Flags().String("amount", "", "amount spent, e.g. 25.50 (required)")
	cmd.Flags().String("description", "", "what the money was spent on (required)")
	cmd.Flags().Int64("category", 0, "category ID (see `categories list`)")
	cmd.Flags().String("date", time.Now().Format(dateLayout), "expense date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func expensesAddRun(cmd *cobra.Command, a *app, ai *AIRecommender) error {
	ctx := cmd.Context()

	amountStr, _ := cmd.Flags().GetString("amount")
	description, _ := cmd.Flags().GetString("description")
	categoryID, _ := cmd.Flags().GetInt64("category")
	dateStr, _ := cmd.Flags().GetString("date")

	amount, err := gateway.ParseAmount(amountStr, a.cfg.Currency)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", dateStr)
	}

	if err := a.requireSession(); err != nil {
		return err
	}

	expense := gateway.NewTransaction{
		Amount:      amount,
		Description: description,
		CategoryID:  categoryID,
		Date:        date,
	}

	if categoryID == 0 {
		if !ai.IsEnabled() {
			return errors.New("--category is required when anthropic_api_key is not set")
		}

		categories, err := fetchSortedCategories(ctx, a.gateway)
		if err != nil {
			return err
		}

		rec, err := ai.Suggest(ctx, expense, categories)
		if err != nil {
			return fmt.Errorf("failed to suggest a category: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Suggested category: %s (%.0f%% confident) %s\n",
			rec.CategoryName, rec.Confidence, rec.Reasoning)
		expense.CategoryID = rec.CategoryID
	}

	log.Debug("creating expense", "description", expense.Description, "category", expense.CategoryID)

	t, err := a.gateway.CreateTransaction(ctx, expense)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Expense recorded with ID: %d\n", t.ID)
	return nil
}

func newExpensesDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense ID: %s", args[0])
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Delete expense %d?", id)).
					Description("This cannot be undone.").
					Affirmative("Delete").
					Negative("Keep").
					Value(&confirmed).
					Run()
				if err != nil {
					return fmt.Errorf("confirming delete: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Kept")
					return nil
				}
			}

			if err := a.requireSession(); err != nil {
				return err
			}

			if err := a.gateway.DeleteTransaction(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rshep3087/ahorrista/gateway"
)

// categoriesGetter defines the interface for fetching categories.
type categoriesGetter interface {
	GetCategories(ctx context.Context) ([]gateway.Category, error)
}

// categoriesListCommand encapsulates the dependencies for the categories list command.
type categoriesListCommand struct {
	app *app
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Category commands",
		Long:  `Commands for the expense categories known to the backend.`,
	}

	listCmd := categoriesListCommand{app: a}
	categoriesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Long:  `List all categories with their IDs.`,
		RunE:  listCmd.run,
	}
	addOutputFlag(categoriesListCmd)

	cmd.AddCommand(categoriesListCmd)
	return cmd
}

// run executes the categories list command.
func (c *categoriesListCommand) run(cmd *cobra.Command, _ []string) error {
	outputFormat, err := validateOutputFormat(cmd)
	if err != nil {
		return err
	}
	if err := c.app.requireSession(); err != nil {
		return err
	}

	categories, err := fetchSortedCategories(cmd.Context(), c.app.gateway)
	if err != nil {
		return err
	}

	if outputFormat == jsonOutputFormat {
		type categoryJSON struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		out := make([]categoryJSON, len(categories))
		for i, cat := range categories {
			out[i] = categoryJSON{ID: cat.ID, Name: cat.Name}
		}
		return outputJSON(cmd.OutOrStdout(), out)
	}
	return outputCategoriesTable(cmd, categories)
}

// fetchSortedCategories returns the categories sorted by name for
// consistent output.
func fetchSortedCategories(ctx context.Context, getter categoriesGetter) ([]gateway.Category, error) {
	categories, err := getter.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	slices.SortFunc(categories, func(a, b gateway.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories, nil
}

func outputCategoriesTable(cmd *cobra.Command, categories []gateway.Category) error {
	if len(categories) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No categories.")
		return nil
	}

	t := createStyledTable("ID", "NAME")
	for _, category := range categories {
		t.Row(strconv.FormatInt(category.ID, 10), category.Name)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}

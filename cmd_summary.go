package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
	"github.com/Rshep3087/ahorrista/summary"
)

const defaultReportConcurrency = 4

var titleCaser = cases.Title(language.English)

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a month of spending grouped by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(cmd)
			if err != nil {
				return err
			}
			c, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			entries, err := a.gateway.GetSummary(cmd.Context(), c.Year(), c.Month())
			if err != nil {
				return fmt.Errorf("failed to fetch summary: %w", err)
			}

			report := newMonthReport(c, a.cfg.Currency, entries)
			if outputFormat == jsonOutputFormat {
				return outputJSON(cmd.OutOrStdout(), report.ToJSON())
			}
			return outputSummaryTable(cmd, a, report)
		},
	}
	addMonthFlag(cmd)
	addOutputFlag(cmd)
	return cmd
}

func outputSummaryTable(cmd *cobra.Command, a *app, r *MonthReport) error {
	w := cmd.OutOrStdout()
	label := r.Month.Display(a.cfg.LocaleTag())

	if len(r.Categories) == 0 {
		fmt.Fprintf(w, "No expenses recorded for %s.\n", label)
		return nil
	}

	t := createStyledTable("ID", "CATEGORY", "COUNT", "TOTAL", "% OF TOTAL")
	for _, c := range r.Categories {
		t.Row(
			strconv.FormatInt(c.ID, 10),
			titleCaser.String(c.Name),
			strconv.Itoa(c.Count),
			displayMoney(c.Total),
			summary.FormatShare(c.Share),
		)
	}

	fmt.Fprintln(w, label)
	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "Total spent: %s\n", displayMoney(r.Total))
	return nil
}

func newDetailCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detail",
		Short: "List the transactions of one category in a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(cmd)
			if err != nil {
				return err
			}
			c, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			categoryID, _ := cmd.Flags().GetInt64("category")
			if err := a.requireSession(); err != nil {
				return err
			}

			transactions, err := a.gateway.GetDetail(cmd.Context(), c.Year(), c.Month(), categoryID)
			if err != nil {
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			if outputFormat == jsonOutputFormat {
				out := make([]*TransactionJSON, len(transactions))
				for i, t := range transactions {
					out[i] = transactionToJSON(t)
				}
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return outputTransactionsTable(cmd, a.cfg.Currency, transactions)
		},
	}
	cmd.Flags().Int64("category", 0, "category ID (see `categories list`)")
	_ = cmd.MarkFlagRequired("category")
	addMonthFlag(cmd)
	addOutputFlag(cmd)
	return cmd
}

func outputTransactionsTable(cmd *cobra.Command, currency string, transactions []gateway.Transaction) error {
	w := cmd.OutOrStdout()
	if len(transactions) == 0 {
		fmt.Fprintln(w, "No transactions in this category for the month.")
		return nil
	}

	t := createStyledTable("ID", "DATE", "DESCRIPTION", "AMOUNT")
	for _, tx := range transactions {
		t.Row(
			strconv.FormatInt(tx.ID, 10),
			tx.Date.Format(dateLayout),
			tx.Description,
			displayMoney(tx.Amount),
		)
	}

	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "Total: %s (%d transactions)\n", displayMoney(sumTransactions(transactions, currency)), len(transactions))
	return nil
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a month's summary with every category's transactions",
		Long: `Fetch the month's summary, then the transactions of every category in
parallel, and print them together.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(cmd)
			if err != nil {
				return err
			}
			c, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if concurrency < 1 {
				return errors.New("concurrency must be at least 1")
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			report, err := buildMonthReport(cmd.Context(), a.gateway, a.cfg.Currency, c, concurrency)
			if err != nil {
				return err
			}

			if outputFormat == jsonOutputFormat {
				return outputJSON(cmd.OutOrStdout(), report.ToJSON())
			}
			return outputReport(cmd, a, report)
		},
	}
	addMonthFlag(cmd)
	addOutputFlag(cmd)
	cmd.Flags().Int("concurrency", defaultReportConcurrency, "number of categories fetched at once")
	return cmd
}

// buildMonthReport fetches the summary and then every category's detail,
// at most limit at a time. The first failure cancels the rest.
func buildMonthReport(
	ctx context.Context,
	gw gateway.Gateway,
	currency string,
	c month.Cursor,
	limit int,
) (*MonthReport, error) {
	entries, err := gw.GetSummary(ctx, c.Year(), c.Month())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}

	report := newMonthReport(c, currency, entries)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, cr := range report.Categories {
		g.Go(func() error {
			ts, err := gw.GetDetail(ctx, c.Year(), c.Month(), cr.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch %s transactions: %w", cr.Name, err)
			}
			cr.Transactions = ts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func outputReport(cmd *cobra.Command, a *app, r *MonthReport) error {
	if err := outputSummaryTable(cmd, a, r); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, c := range r.Categories {
		fmt.Fprintf(w, "\n%s · %s\n", titleCaser.String(c.Name), displayMoney(c.Total))
		if err := outputTransactionsTable(cmd, r.Currency, c.Transactions); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Rshep3087/ahorrista/gateway"
)

// goalJSON is the JSON shape of a savings goal.
type goalJSON struct {
	ID            int64  `json:"id"`
	Month         string `json:"month"`
	Description   string `json:"description"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	Currency      string `json:"currency"`
}

func goalToJSON(g gateway.Goal) goalJSON {
	currency := ""
	if g.TargetAmount != nil {
		currency = g.TargetAmount.Currency().Code
	}
	return goalJSON{
		ID:            g.ID,
		Month:         fmt.Sprintf("%04d-%02d", g.Year, g.Month),
		Description:   g.Description,
		TargetAmount:  amountString(g.TargetAmount),
		CurrentAmount: amountString(g.CurrentAmount),
		Currency:      currency,
	}
}

func newGoalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Monthly savings goal commands",
	}

	cmd.AddCommand(newGoalsListCmd(a), newGoalsCreateCmd(a), newGoalsUpdateCmd(a))
	return cmd
}

func newGoalsListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List savings goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			goals, err := a.gateway.GetGoals(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch goals: %w", err)
			}

			if outputFormat == jsonOutputFormat {
				out := make([]goalJSON, len(goals))
				for i, g := range goals {
					out[i] = goalToJSON(g)
				}
				return outputJSON(cmd.OutOrStdout(), out)
			}

			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals.")
				return nil
			}

			t := createStyledTable("ID", "MONTH", "DESCRIPTION", "SAVED", "TARGET")
			for _, g := range goals {
				j := goalToJSON(g)
				t.Row(strconv.FormatInt(j.ID, 10), j.Month, j.Description,
					displayMoney(g.CurrentAmount), displayMoney(g.TargetAmount))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newGoalsCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a savings goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, _ := cmd.Flags().GetString("target")
			description, _ := cmd.Flags().GetString("description")

			amount, err := gateway.ParseAmount(target, a.cfg.Currency)
			if err != nil {
				return fmt.Errorf("invalid target: %w", err)
			}
			c, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			g, err := a.gateway.CreateGoal(cmd.Context(), gateway.GoalInput{
				TargetAmount: amount,
				Year:         c.Year(),
				Month:        c.Month(),
				Description:  description,
			})
			if err != nil {
				return fmt.Errorf("failed to create goal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Goal created with ID: %d\n", g.ID)
			return nil
		},
	}

	cmd.Flags().String("target", "", "amount to save (required)")
	cmd.Flags().String("description", "", "what the goal is for")
	addMonthFlag(cmd)
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newGoalsUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a savings goal",
		Long:  `Change a savings goal. Only the flags that are given are updated.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid goal ID: %s", args[0])
			}

			patch, err := goalPatchFromFlags(cmd, a.cfg.Currency)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			g, err := a.gateway.UpdateGoal(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("failed to update goal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Goal %d updated\n", g.ID)
			return nil
		},
	}

	cmd.Flags().String("target", "", "new amount to save")
	cmd.Flags().String("description", "", "new description")
	addMonthFlag(cmd)
	return cmd
}

func goalPatchFromFlags(cmd *cobra.Command, currency string) (gateway.GoalPatch, error) {
	var patch gateway.GoalPatch
	flags := cmd.Flags()

	if flags.Changed("target") {
		target, _ := flags.GetString("target")
		amount, err := gateway.ParseAmount(target, currency)
		if err != nil {
			return patch, fmt.Errorf("invalid target: %w", err)
		}
		patch.TargetAmount = amount
	}
	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		patch.Description = &description
	}
	if flags.Changed("month") {
		c, err := monthFlag(cmd)
		if err != nil {
			return patch, err
		}
		year, m := c.Year(), c.Month()
		patch.Year, patch.Month = &year, &m
	}

	if patch.TargetAmount == nil && patch.Description == nil && patch.Year == nil {
		return patch, errors.New("nothing to update, pass --target, --description or --month")
	}
	return patch, nil
}

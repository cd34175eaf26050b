package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newDashboardCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard cards and active orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			cards, err := a.api.DashboardCards(ctx)
			if err != nil {
				return err
			}
			if err := printCards(cmd.OutOrStdout(), cards); err != nil {
				return err
			}

			active, err := a.api.ActiveOrders(ctx)
			if err != nil {
				return err
			}
			cmd.Println()
			if len(active) == 0 {
				cmd.Println("No active orders.")
				return nil
			}
			return printActiveOrders(cmd.OutOrStdout(), active)
		},
	}
}

func newPayrollCmd(app func() *App) *cobra.Command {
	var status, search string

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Show what each booster is owed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app().api.Payroll(cmd.Context(), status, search)
			if err != nil {
				return err
			}
			return printPayroll(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only boosters with this payroll status")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by booster name or e-mail")
	return cmd
}

func newGamesCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List supported games",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := app().api.Games(cmd.Context())
			if err != nil {
				return err
			}
			return printGames(cmd.OutOrStdout(), list)
		},
	}
}

func newRateCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Show the current USD to BRL rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rate, err := app().api.DollarRate(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("1 USD = %.4f BRL\n", rate)
			return nil
		},
	}
}

func newRatesCmd(app func() *App) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show exchange rates for a base currency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rates, err := app().api.ExchangeRates(cmd.Context(), base)
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(rates))
			for code := range rates {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			tw := newTable(cmd.OutOrStdout())
			for _, code := range codes {
				fmt.Fprintf(tw, "%s\t%s\n", code, strconv.FormatFloat(rates[code], 'f', -1, 64))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&base, "base", "USD", "base currency")
	return cmd
}

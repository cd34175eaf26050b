package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boostmanager/internal/client/config"
)

// AppFactory builds the App once the global flags are parsed.
type AppFactory func(ctx context.Context, c *config.Config) (*App, error)

// NewRootCmd returns the bmctl command tree.
func NewRootCmd(ctx context.Context) *cobra.Command {
	return newRootCmd(ctx, NewApp)
}

func newRootCmd(ctx context.Context, factory AppFactory) *cobra.Command {
	var app *App

	cmd := &cobra.Command{
		Use:           "bmctl",
		Short:         "BoostManager command-line client",
		Long:          "bmctl signs in to a BoostManager server and manages orders, payroll and the back office.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := config.RegisterFlags(cmd.PersistentFlags())

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := flags.Load()
		if err != nil {
			return err
		}
		app, err = factory(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		app.SetIO(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	}

	get := func() *App { return app }
	cmd.AddCommand(
		newAuthCmd(get),
		newOnboardingCmd(get),
		newOrdersCmd(get),
		newDashboardCmd(get),
		newPayrollCmd(get),
		newGamesCmd(get),
		newRateCmd(get),
		newRatesCmd(get),
		newAdminCmd(get),
	)

	cmd.SetContext(ctx)
	return cmd
}

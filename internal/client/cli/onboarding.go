package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boostmanager/internal/validation"
)

func newOnboardingCmd(app func() *App) *cobra.Command {
	var form validation.OnboardingForm

	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Create the company workspace for a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			if err := a.promptIfEmpty(&form.Name, "Enter your name"); err != nil {
				return err
			}
			if form.TenantName == "" {
				pending, err := a.session.PendingCompanyName(ctx)
				if err != nil {
					return err
				}
				if pending != "" {
					cmd.Printf("Using company name from sign-up: %s\n", pending)
				} else if err := a.promptIfEmpty(&form.TenantName, "Enter company name"); err != nil {
					return err
				}
			}

			res, err := a.session.CompleteOnboarding(ctx, form)
			if err != nil {
				return err
			}
			cmd.Printf("Workspace %q is ready.\n", res.Tenant.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "your full name")
	cmd.Flags().StringVar(&form.TenantName, "company", "", "company name")
	return cmd
}
